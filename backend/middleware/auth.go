package middleware

import (
	"context"
	"errors"

	"arnhub/backend/config"
	"arnhub/backend/models"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// CurrentUser returns the user stored by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}

// UserLoader finds a user by id. *services.AccountService implements it.
type UserLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware resolves the session token to a user. Requests without a
// valid token, or whose user has been deleted, are sent to the login page.
func AuthMiddleware(users UserLoader, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Flash(c, fiber.StatusUnauthorized, utils.FlashWarning, "Please log in to continue.", "/login")
		}

		user, err := users.Get(c.UserContext(), userID)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			return err
		}
		if err != nil {
			utils.ClearTokenCookie(c)
			return utils.Flash(c, fiber.StatusUnauthorized, utils.FlashWarning, "Please log in to continue.", "/login")
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

// RequireAdmin lets admins through and sends everyone else to the home page.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := services.RequireAdmin(CurrentUser(c)); err != nil {
			return utils.Flash(c, fiber.StatusForbidden, utils.FlashDanger, err.Error(), "/")
		}
		return c.Next()
	}
}

// RequireHeadAdmin lets head admins through and sends everyone else to the
// admin dashboard.
func RequireHeadAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := services.RequireHeadAdmin(CurrentUser(c)); err != nil {
			return utils.Flash(c, fiber.StatusForbidden, utils.FlashDanger, err.Error(), "/admin")
		}
		return c.Next()
	}
}
