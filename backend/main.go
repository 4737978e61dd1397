package main

import (
	"context"
	"log"

	"arnhub/backend/config"
	"arnhub/backend/controllers"
	"arnhub/backend/middleware"
	"arnhub/backend/routes"
	"arnhub/backend/services"
	"arnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{Format: cfg.LogFormat, EnableColors: cfg.LogFormat != "json"})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	ctx := context.Background()

	videos, err := services.NewVideoStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Error initializing video store: %v", err)
	}

	hasher := utils.NewPasswordHasher(cfg)
	notifier := services.NewNotifier(cfg, logger)

	svc := routes.Services{
		Accounts:      services.NewAccountService(db, hasher, notifier, logger),
		AdminRequests: services.NewAdminRequestService(db, notifier, logger),
		Catalog:       services.NewCatalogService(db, videos, logger),
	}

	if cfg.HeadAdminUsername != "" {
		user, created, err := svc.Accounts.EnsureHeadAdmin(ctx, cfg.HeadAdminUsername, cfg.HeadAdminEmail, cfg.HeadAdminPassword)
		if err != nil {
			logger.Fatalf("Error creating head admin: %v", err)
		}
		if created {
			logger.Printf("Created head admin %q (id %d)", user.Username, user.ID)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ARNhub",
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: controllers.ErrorHandler(logger),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger, cfg.LogFormat != "json"))

	if cfg.StorageBackend != "s3" {
		app.Static("/static/lesson_videos", cfg.UploadDir)
	}

	// Setup routes
	routes.SetupRoutes(app, svc, cfg, logger)

	// Start server
	logger.Fatal(app.Listen(":" + cfg.ServerPort))
}
