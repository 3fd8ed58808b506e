// AngelaMos | 2026
// users.go

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/user"
)

func newUsersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user roles",
	}

	cmd.AddCommand(
		setRoleCmd(opts, "promote", "Grant the admin role", user.RoleAdmin),
		setRoleCmd(opts, "demote", "Revoke the admin role", user.RoleUser),
	)

	return cmd
}

func setRoleCmd(opts *options, use, short, role string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDatabase(cmd, func(ctx context.Context, db *core.Database) error {
				svc := user.NewService(user.NewRepository(db.DB), nil, nil)

				u, err := svc.SetRoleByUsername(ctx, args[0], role)
				if err != nil {
					return err
				}

				cmd.Printf("@%s is now %s\n", u.Username, u.Role)
				return nil
			})
		},
	}
}
