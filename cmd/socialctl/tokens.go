// AngelaMos | 2026
// tokens.go

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

func newTokensCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Maintain stored refresh tokens",
	}

	var grace time.Duration
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete refresh tokens that expired before the grace period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(ctx context.Context, db *core.Database) error {
				deleted, err := auth.NewRepository(db.DB).DeleteExpired(ctx, grace)
				if err != nil {
					return err
				}

				cmd.Printf("deleted %d expired refresh tokens\n", deleted)
				return nil
			})
		},
	}
	cleanup.Flags().DurationVar(&grace, "grace", 24*time.Hour,
		"keep tokens that expired less than this long ago")

	cmd.AddCommand(cleanup)
	return cmd
}
