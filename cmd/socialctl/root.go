// AngelaMos | 2026
// root.go

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

const commandTimeout = 30 * time.Second

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "socialctl",
		Short:         "Operator tooling for the social backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml",
		"path to config file")

	root.AddCommand(
		newMigrateCmd(opts),
		newKeygenCmd(),
		newUsersCmd(opts),
		newTokensCmd(opts),
	)

	return root
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withDatabase runs fn against a fresh connection pool that is closed
// before returning.
func (o *options) withDatabase(
	cmd *cobra.Command,
	fn func(ctx context.Context, db *core.Database) error,
) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exits right after

	return fn(ctx, db)
}
