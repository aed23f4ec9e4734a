package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and trigger status",
		Long:  `Display the sessions currently nearing expiry and whether the analysis trigger pipeline is healthy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	ctx := context.Background()

	deps, err := BuildServiceDependencies(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	if deps.Trigger.IsHealthy() {
		fmt.Println("✅ Trigger pipeline is healthy")
	} else {
		fmt.Println("❌ Trigger pipeline is unhealthy")
	}

	offset := time.Duration(deps.Config.TriggerOffsetMinutes) * time.Minute
	expiring := deps.Registry.GetSessionsExpiringSoon(ctx, offset)

	fmt.Printf("Sessions expiring within %s: %d\n", offset, len(expiring))

	for _, session := range expiring {
		analyzed := " "
		if session.Analyzed {
			analyzed = "analyzed"
		}
		fmt.Printf("   %s  agent=%s ttl=%ds %s\n", session.WorkflowID, session.AgentName, session.TTLSeconds, analyzed)
	}

	return nil
}
