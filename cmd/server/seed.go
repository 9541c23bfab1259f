package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stuimpact/stuimpactweb2/pkg/cache"
	"github.com/stuimpact/stuimpactweb2/pkg/config"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	pgrepo "github.com/stuimpact/stuimpactweb2/pkg/repository/postgres"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Import opportunities from a JSON array file (default $SEED_FILE)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			path := cfg.SeedFile
			if len(args) == 1 {
				path = args[0]
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			entries, err := opportunity.DecodeCatalog(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			ctx := cmd.Context()
			pool, err := connectDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			// each save rotates the shared search cache generation
			var store cache.Store
			if cfg.RedisAddr != "" {
				redisStore, rdb, err := openRedisStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer rdb.Close()
				store = redisStore
			} else {
				log.Warn().Msg("REDIS_ADDR not set, running servers keep cached pages until SEARCH_CACHE_TTL")
			}

			svc := opportunity.NewService(pgrepo.NewOpportunityRepository(pool), store, opportunity.Options{
				PageSize: cfg.SearchPageSize,
				CacheTTL: cfg.SearchCacheTTL,
			})
			imported, skipped := 0, 0
			for _, e := range entries {
				if _, err := svc.Save(ctx, e); err != nil {
					skipped++
					log.Warn().Err(err).Str("id", e.ID).Str("title", e.Title).Msg("skipping catalog entry")
					continue
				}
				imported++
			}
			log.Info().Str("file", path).Int("imported", imported).Int("skipped", skipped).Msg("catalog seeded")
			return nil
		},
	}
}
