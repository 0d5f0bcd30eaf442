package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/repository/postgres"
)

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the identity database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = config.Load().Database.URL
			}

			if err := postgres.Migrate(databaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default: DATABASE_URL)")

	return cmd
}
