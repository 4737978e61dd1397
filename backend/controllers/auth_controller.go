package controllers

import (
	"log"

	"arnhub/backend/config"
	"arnhub/backend/models"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Accounts *services.AccountService
	Cfg      *config.Config
	Logger   *log.Logger
}

func NewAuthController(accounts *services.AccountService, cfg *config.Config, logger *log.Logger) *AuthController {
	return &AuthController{Accounts: accounts, Cfg: cfg, Logger: logger}
}

type SignupInput struct {
	Username string `json:"username" form:"username" validate:"required,max=80"`
	Email    string `json:"email" form:"email" validate:"required,email,max=120"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type sessionData struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// [+] Signup godoc
// @Summary Register a new user
// @Description Creates an account and logs the user in
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param user body SignupInput true "User registration data"
// @Success 201 {object} utils.FlashResponse
// @Failure 409 {object} utils.FlashResponse
// @Failure 422 {object} utils.FlashResponse
// @Router /signup [post]
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var input SignupInput
	if err := bind(c, &input); err != nil {
		return respondError(c, ac.Logger, err, "/signup")
	}

	user, err := ac.Accounts.Register(c.UserContext(), input.Username, input.Email, input.Password)
	if err != nil {
		return respondError(c, ac.Logger, err, "/signup")
	}

	return ac.startSession(c, fiber.StatusCreated, user, "Account created successfully!")
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate by username or email and return a JWT token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} utils.FlashResponse
// @Failure 401 {object} utils.FlashResponse
// @Router /login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := bind(c, &input); err != nil {
		return respondError(c, ac.Logger, err, "/login")
	}

	user, err := ac.Accounts.Authenticate(c.UserContext(), input.Username, input.Password)
	if err != nil {
		return respondError(c, ac.Logger, err, "/login")
	}

	return ac.startSession(c, fiber.StatusOK, user, "Logged in successfully.")
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	utils.ClearTokenCookie(c)
	return utils.Flash(c, fiber.StatusOK, utils.FlashInfo, "You have been logged out.", "/")
}

func (ac *AuthController) startSession(c *fiber.Ctx, status int, user *models.User, message string) error {
	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return respondError(c, ac.Logger, err, "/login")
	}

	utils.SetTokenCookie(c, token, ac.Cfg)
	return utils.Flash(c, status, utils.FlashSuccess, message, "/", sessionData{Token: token, User: user})
}
