// AngelaMos | 2026
// migrate.go

package main

import (
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/migrations"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded schema migrations",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withMigrator(func(m *core.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.withMigrator(func(m *core.Migrator) error {
					changed, err := m.Up()
					if err != nil {
						return err
					}
					if !changed {
						cmd.Println("no pending migrations")
					}
					return printVersion(cmd, m)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return opts.withMigrator(func(m *core.Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
	)

	return cmd
}

func (o *options) withMigrator(fn func(m *core.Migrator) error) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}

	m, err := core.NewMigrator(cfg.Database.URL, migrations.FS)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // process exits right after

	return fn(m)
}

func printVersion(cmd *cobra.Command, m *core.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("schema version %d (%s)\n", version, state)
	return nil
}
