package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/havenhq/haven/internal/controllers"
)

type HTTPServerDependencies struct {
	SchedulerController *controllers.SchedulerController
}

func NewHTTPServer(ctx context.Context, deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "haven-scheduler",
	})

	// Add basic middleware
	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "haven-scheduler",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Get("/status", deps.SchedulerController.GetStatus)
	router.Post("/check", deps.SchedulerController.RunCheck)
	router.Post("/cleanup", deps.SchedulerController.CleanupSessions)

	return router
}
