package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nstore-backend/config"
)

func newCreateAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account in MongoDB",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DataDriver != config.DataDriverMongo {
				return errors.New("create-admin requires DATA_DRIVER=mongo")
			}
			if email == "" || len(password) < 8 {
				return errors.New("--email is required and --password must be at least 8 characters")
			}

			log := config.NewLogger(os.Stderr, cfg)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			b, err := openBackends(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer b.close(context.Background())

			admin, err := b.mongo.CreateAdmin(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	return cmd
}
