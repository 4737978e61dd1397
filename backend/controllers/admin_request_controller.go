package controllers

import (
	"fmt"
	"log"

	"arnhub/backend/middleware"
	"arnhub/backend/models"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminRequestController struct {
	Requests *services.AdminRequestService
	Logger   *log.Logger
}

func NewAdminRequestController(requests *services.AdminRequestService, logger *log.Logger) *AdminRequestController {
	return &AdminRequestController{Requests: requests, Logger: logger}
}

type AdminRequestInput struct {
	Reason string `json:"reason" form:"reason"`
}

type RevokeInput struct {
	Comment string `json:"comment" form:"comment"`
}

// Show returns the caller's own request, or null if there is none.
func (ac *AdminRequestController) Show(c *fiber.Ctx) error {
	req, err := ac.Requests.Get(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, ac.Logger, err, "/")
	}
	return utils.Success(c, fiber.StatusOK, req)
}

func (ac *AdminRequestController) Submit(c *fiber.Ctx) error {
	var input AdminRequestInput
	if err := bind(c, &input); err != nil {
		return respondError(c, ac.Logger, err, "/request-admin")
	}

	user := middleware.CurrentUser(c)
	previous, err := ac.Requests.Get(c.UserContext(), user)
	if err != nil {
		return respondError(c, ac.Logger, err, "/request-admin")
	}

	req, err := ac.Requests.Submit(c.UserContext(), user, input.Reason)
	if err != nil {
		return respondError(c, ac.Logger, err, "/request-admin")
	}

	// A rejected or revoked request is reopened in place.
	if previous != nil && previous.ID == req.ID {
		return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess,
			"Request re-submitted successfully. Please wait for review.", "/request-admin", req)
	}
	return utils.Flash(c, fiber.StatusCreated, utils.FlashSuccess,
		"Your request has been submitted successfully.", "/request-admin", req)
}

// List shows pending requests unless ?status= asks for another state.
func (ac *AdminRequestController) List(c *fiber.Ctx) error {
	status := models.AdminRequestStatus(c.Query("status", string(models.AdminRequestPending)))

	requests, err := ac.Requests.List(c.UserContext(), status)
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin")
	}
	return utils.Success(c, fiber.StatusOK, requests, fiber.Map{"status": status, "count": len(requests)})
}

func (ac *AdminRequestController) Approve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/admin-requests")
	}

	req, err := ac.Requests.Approve(c.UserContext(), id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/admin-requests")
	}

	name := "User"
	if req.User != nil {
		name = req.User.Username
	}
	return utils.Flash(c, fiber.StatusOK, utils.FlashSuccess,
		fmt.Sprintf("%s is now an admin!", name), "/admin/admin-requests", req)
}

func (ac *AdminRequestController) Reject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/admin-requests")
	}

	var input AdminRequestInput
	if err := bind(c, &input); err != nil {
		return respondError(c, ac.Logger, err, "/admin/admin-requests")
	}

	result, err := ac.Requests.Reject(c.UserContext(), id, input.Reason, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/admin-requests")
	}

	if !result.Notified {
		return utils.Flash(c, fiber.StatusOK, utils.FlashWarning,
			"Request rejected, but failed to send email.", "/admin/admin-requests", result.Request)
	}
	return utils.Flash(c, fiber.StatusOK, utils.FlashInfo,
		"Request rejected and reason sent.", "/admin/admin-requests", result.Request)
}

func (ac *AdminRequestController) Revoke(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/users")
	}

	var input RevokeInput
	if err := bind(c, &input); err != nil {
		return respondError(c, ac.Logger, err, "/admin/users")
	}

	user, err := ac.Requests.Revoke(c.UserContext(), id, input.Comment, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, ac.Logger, err, "/admin/users")
	}

	return utils.Flash(c, fiber.StatusOK, utils.FlashWarning,
		fmt.Sprintf("Admin rights revoked for %s.", user.Username), "/admin/users", user)
}
