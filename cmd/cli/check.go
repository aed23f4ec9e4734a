package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single analysis cycle now",
		Long:  `Scan the session registry once and trigger analysis for every session nearing expiry, without starting the daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck()
		},
	}

	return cmd
}

func runCheck() error {
	ctx := context.Background()

	deps, err := BuildServiceDependencies(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	result := deps.Scheduler.RunManualCheck(ctx)

	fmt.Printf("Check completed in %s\n", result.Duration)
	fmt.Printf("   Expiring sessions: %d\n", result.TotalExpiring)
	fmt.Printf("   Targeted:          %d\n", result.SessionsTargeted)
	fmt.Printf("   Succeeded:         %d\n", result.Succeeded)
	fmt.Printf("   Failed:            %d\n", result.Failed)

	for workflowID, ok := range result.Results {
		marker := "✅"
		if !ok {
			marker = "❌"
		}
		fmt.Printf("   %s %s\n", marker, workflowID)
	}

	return nil
}
