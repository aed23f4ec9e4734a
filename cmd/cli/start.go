package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/havenhq/haven/internal/controllers"
	"github.com/havenhq/haven/internal/scheduler"
	"github.com/havenhq/haven/internal/server"
)

const schedulerWatchInterval = 30 * time.Second

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		Long: `Start the conversation analyzer scheduler as a long-running daemon with
an HTTP surface for health checks, status and manual cycles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}

	return cmd
}

func runStart() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Msg("Starting scheduler daemon")

	deps, err := BuildServiceDependencies(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	deps.Manager.Start()
	defer deps.Manager.Stop()

	go watchScheduler(ctx, deps.Manager)

	schedulerController := controllers.NewSchedulerController(controllers.SchedulerControllerDependencies{
		Manager: deps.Manager,
	})

	app := server.NewHTTPServer(ctx, server.HTTPServerDependencies{
		SchedulerController: schedulerController,
	})

	log.Info().
		Str("address", deps.Config.HTTPAddress).
		Int("interval_seconds", deps.Config.SchedulerIntervalSeconds).
		Int("offset_minutes", deps.Config.TriggerOffsetMinutes).
		Msg("Scheduler daemon ready")

	if err := app.Listen(deps.Config.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("Scheduler daemon stopped")
	return nil
}

// watchScheduler polls the scheduler and restarts it if it stopped
// without being asked to. The daemon owns the scheduler's liveness.
func watchScheduler(ctx context.Context, manager *scheduler.ServiceManager) {
	ticker := time.NewTicker(schedulerWatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := manager.Status()
			if status.Running {
				continue
			}

			log.Warn().Msg("Scheduler is not running, restarting")

			manager.Stop()
			if manager.Start() {
				log.Info().Msg("Scheduler restarted")
			}
		}
	}
}
