package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired session records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup()
		},
	}

	return cmd
}

func runCleanup() error {
	ctx := context.Background()

	deps, err := BuildServiceDependencies(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service dependencies")
	}

	cleaned := deps.Registry.CleanupExpiredSessions(ctx)

	fmt.Printf("Cleaned up %d expired sessions\n", cleaned)

	return nil
}
