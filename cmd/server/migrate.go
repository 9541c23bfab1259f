package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stuimpact/stuimpactweb2/pkg/config"
	"github.com/stuimpact/stuimpactweb2/pkg/storage/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := connectDB(ctx, config.Load())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			version, err := postgres.MigrationVersion(ctx, pool)
			if err != nil {
				return err
			}
			log.Info().Int64("version", version).Msg("database is up to date")
			return nil
		},
	}
}
