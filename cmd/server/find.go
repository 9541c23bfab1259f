package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stuimpact/stuimpactweb2/pkg/config"
	"github.com/stuimpact/stuimpactweb2/pkg/finder"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// findCmd drives the finder against a running API, the same way the
// opportunities page does: restore, set criteria, then scroll page by page.
func findCmd() *cobra.Command {
	var (
		apiURL    string
		interests []string
		grade     string
		location  string
		pages     int
		visitor   string
	)
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search opportunities through the API and print accumulated results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			storage, closeStorage, err := finderStorage(ctx, cfg, visitor)
			if err != nil {
				return err
			}
			defer closeStorage()

			agg := finder.NewAggregator(finder.NewClient(apiURL, nil), storage, finder.Options{PageSize: cfg.SearchPageSize})
			if agg.RestoreFromPersistence(ctx) {
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d results\n", len(agg.CurrentResults()))
			}

			if len(interests) > 0 || grade != "" {
				c, err := search.Build(interests, grade)
				if err != nil {
					var ve *search.ValidationError
					if errors.As(err, &ve) {
						return errors.New(ve.Message())
					}
					return err
				}
				agg.SetCriteria(ctx, c.WithLocation(location))
			}

			for i := 0; i < pages && !agg.Session().Exhausted(); i++ {
				if err := agg.NotifyScrollNearEnd(ctx); err != nil {
					return apiFailure(err, "filters rejected")
				}
			}

			out := cmd.OutOrStdout()
			for i, o := range agg.CurrentResults() {
				fmt.Fprintf(out, "%3d. %s [%s]\n", i+1, o.Title, strings.Join(o.Tags, ", "))
				if o.ApplyURL != "" {
					fmt.Fprintf(out, "     %s\n", o.ApplyURL)
				}
			}
			if agg.Session().Exhausted() {
				fmt.Fprintln(out, "-- no more results --")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080/api/v1", "API base URL")
	cmd.Flags().StringSliceVarP(&interests, "interest", "i", nil, "interest tag, repeatable")
	cmd.Flags().StringVarP(&grade, "grade", "g", "", "grade (9-12 or FRESHMEN..SENIORS)")
	cmd.Flags().StringVar(&location, "location", "", "location hint")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "pages to load")
	cmd.Flags().StringVar(&visitor, "visitor", "cli", "visitor id used to key persisted results in redis")
	return cmd
}

// finderStorage persists the session in redis when configured so a later
// run resumes where this one stopped; otherwise it lives for one run.
func finderStorage(ctx context.Context, cfg config.Config, visitor string) (finder.Storage, func(), error) {
	if cfg.RedisAddr == "" {
		return finder.NewMemoryStorage(), func() {}, nil
	}
	store, rdb, err := openRedisStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return finder.NewStoreStorage(store, visitor, 24*time.Hour), func() { _ = rdb.Close() }, nil
}

// apiFailure turns a 400 from the API into its user-facing message.
func apiFailure(err error, prefix string) error {
	var apiErr *finder.APIError
	if finder.IsValidationFailure(err) && errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", prefix, apiErr.Message)
	}
	return err
}
