package controllers

import (
	"log"

	"arnhub/backend/middleware"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Accounts *services.AccountService
	Logger   *log.Logger
}

func NewUserController(accounts *services.AccountService, logger *log.Logger) *UserController {
	return &UserController{Accounts: accounts, Logger: logger}
}

type RenameUserInput struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.FlashResponse
// @Router /admin/users [get]
func (uc *UserController) List(c *fiber.Ctx) error {
	users, err := uc.Accounts.ListUsers(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

func (uc *UserController) Rename(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	var input RenameUserInput
	if err := bind(c, &input); err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	user, err := uc.Accounts.Rename(c.UserContext(), id, input.Username, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "Username updated!", "/admin/users", user)
}

// ResetPassword godoc
// @Summary Reset a user's password
// @Description Sets a random password and emails it to the user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.FlashResponse
// @Failure 404 {object} utils.FlashResponse
// @Router /admin/users/reset-password/{id} [post]
func (uc *UserController) ResetPassword(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	result, err := uc.Accounts.ResetPassword(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	if !result.Delivered {
		return utils.Flash(c, fiber.StatusOK, utils.FlashWarning,
			"Password reset, but failed to send email.", "/admin/users", result.User)
	}
	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess,
		"Password reset and email sent!", "/admin/users", result.User)
}

func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	if err := uc.Accounts.DeleteUser(c.UserContext(), id, middleware.CurrentUser(c)); err != nil {
		return respondError(c, uc.Logger, err, "/admin/users")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess, "User deleted successfully.", "/admin/users")
}
