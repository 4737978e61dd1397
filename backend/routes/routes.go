package routes

import (
	"log"

	"arnhub/backend/config"
	"arnhub/backend/controllers"
	"arnhub/backend/middleware"
	"arnhub/backend/services"

	"github.com/gofiber/fiber/v2"
)

// Services are the application services the HTTP layer talks to.
type Services struct {
	Accounts      *services.AccountService
	AdminRequests *services.AdminRequestService
	Catalog       *services.CatalogService
}

func SetupRoutes(app *fiber.App, svc Services, cfg *config.Config, logger *log.Logger) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(svc.Accounts, cfg)
	adminMiddleware := middleware.RequireAdmin()
	headAdminMiddleware := middleware.RequireHeadAdmin()

	// Auth routes
	authController := controllers.NewAuthController(svc.Accounts, cfg, logger)
	app.Post("/signup", authController.Signup)
	app.Post("/login", authController.Login)
	app.Post("/logout", authMiddleware, authController.Logout)

	// Learner routes
	coursesController := controllers.NewCoursesController(svc.Catalog, logger)
	app.Get("/courses", authMiddleware, coursesController.Browse)
	app.Get("/course/:id", authMiddleware, coursesController.Detail)
	app.Get("/course/:id/lesson/:lessonId", authMiddleware, coursesController.Lesson)

	requestsController := controllers.NewAdminRequestController(svc.AdminRequests, logger)
	app.Get("/request-admin", authMiddleware, requestsController.Show)
	app.Post("/request-admin", authMiddleware, requestsController.Submit)

	admin := app.Group("/admin", authMiddleware)

	// Dashboard
	overviewController := controllers.NewOverviewController(svc.Catalog, logger)
	admin.Get("/", adminMiddleware, overviewController.Dashboard)

	// Admin routes for courses
	admin.Get("/courses", adminMiddleware, coursesController.Managed)
	admin.Post("/courses/add", adminMiddleware, coursesController.Create)
	admin.Post("/courses/edit/:id", adminMiddleware, coursesController.Update)
	admin.Post("/courses/delete/:id", adminMiddleware, coursesController.Delete)
	admin.Post("/courses/:id/publish", adminMiddleware, coursesController.Publish)

	// Admin routes for lessons
	lessonsController := controllers.NewLessonsController(svc.Catalog, logger)
	admin.Get("/courses/:id/lessons", adminMiddleware, lessonsController.List)
	admin.Post("/courses/:id/lessons/add", adminMiddleware, lessonsController.Create)
	admin.Post("/lessons/:id/edit", adminMiddleware, lessonsController.Update)
	admin.Post("/lessons/:id/delete", adminMiddleware, lessonsController.Delete)

	// Head admin routes for users
	userController := controllers.NewUserController(svc.Accounts, logger)
	admin.Get("/users", headAdminMiddleware, userController.List)
	admin.Post("/users/edit/:id", headAdminMiddleware, userController.Rename)
	admin.Post("/users/reset-password/:id", headAdminMiddleware, userController.ResetPassword)
	admin.Post("/users/delete/:id", headAdminMiddleware, userController.Delete)

	// Admin request review
	admin.Get("/admin-requests", headAdminMiddleware, requestsController.List)
	admin.Post("/admin-requests/approve/:id", headAdminMiddleware, requestsController.Approve)
	admin.Post("/reject-admin/:id", headAdminMiddleware, requestsController.Reject)
	admin.Post("/revoke-admin/:id", adminMiddleware, requestsController.Revoke)
}
