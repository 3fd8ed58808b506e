// AngelaMos | 2026
// keygen.go

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
)

func newKeygenCmd() *cobra.Command {
	var (
		privatePath string
		publicPath  string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the ES256 key pair used to sign access tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(privatePath); err == nil {
					return fmt.Errorf("%s already exists, pass --force to replace it", privatePath)
				}
			}

			for _, p := range []string{privatePath, publicPath} {
				if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
					return fmt.Errorf("create key directory: %w", err)
				}
			}

			if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
				return err
			}

			cmd.Printf("wrote %s and %s\n", privatePath, publicPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "keys/private.pem", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "keys/public.pem", "public key output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing keys")

	return cmd
}
