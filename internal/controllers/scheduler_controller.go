package controllers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/havenhq/haven/internal/scheduler"
)

// SchedulerController exposes the scheduler lifecycle over HTTP so
// operators can inspect and drive it without touching the daemon.
type SchedulerController struct {
	manager *scheduler.ServiceManager
}

type SchedulerControllerDependencies struct {
	Manager *scheduler.ServiceManager
}

func NewSchedulerController(deps SchedulerControllerDependencies) *SchedulerController {
	return &SchedulerController{
		manager: deps.Manager,
	}
}

// GetStatus reports whether the scheduler is running and when it fires next.
func (c *SchedulerController) GetStatus(ctx fiber.Ctx) error {
	return ctx.JSON(c.manager.Status())
}

// RunCheck runs a single analysis cycle immediately, outside the ticker.
func (c *SchedulerController) RunCheck(ctx fiber.Ctx) error {
	log.Info().Msg("Manual analysis check requested over HTTP")

	result := c.manager.RunManualCheck(ctx.RequestCtx())

	return ctx.JSON(result)
}

// CleanupSessions removes registry entries whose backing keys already expired.
func (c *SchedulerController) CleanupSessions(ctx fiber.Ctx) error {
	cleaned := c.manager.CleanupExpiredSessions(ctx.RequestCtx())

	return ctx.JSON(fiber.Map{
		"cleaned": cleaned,
	})
}
