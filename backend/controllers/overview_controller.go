package controllers

import (
	"log"

	"arnhub/backend/middleware"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// OverviewController serves the admin dashboard.
type OverviewController struct {
	Catalog *services.CatalogService
	Logger  *log.Logger
}

func NewOverviewController(catalog *services.CatalogService, logger *log.Logger) *OverviewController {
	return &OverviewController{Catalog: catalog, Logger: logger}
}

// Dashboard возвращает счётчики курсов, уроков и заявок для панели администратора
func (oc *OverviewController) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	stats, err := oc.Catalog.Dashboard(c.UserContext(), user)
	if err != nil {
		return respondError(c, oc.Logger, err, "/")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":  user,
		"stats": stats,
	})
}
