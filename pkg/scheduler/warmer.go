// Package scheduler keeps the search cache warm on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/stuimpact/stuimpactweb2/pkg/logger"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// Searcher is the slice of opportunity.UseCase the warmer needs.
type Searcher interface {
	Search(ctx context.Context, c search.Criteria, page int) (opportunity.Page, error)
}

// Warmer requests page 1 of every single-interest, single-grade search so
// the first visitor for each combination is served from cache.
type Warmer struct {
	cron     *cron.Cron
	searcher Searcher
	spec     string
	log      zerolog.Logger

	wg sync.WaitGroup
}

// New builds a Warmer firing on spec, e.g. "@every 30m" or "0 */2 * * *".
func New(searcher Searcher, spec string) *Warmer {
	log := logger.Component("scheduler")
	cronLog := cron.PrintfLogger(&log)
	return &Warmer{
		cron:     cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		searcher: searcher,
		spec:     spec,
		log:      log,
	}
}

// Start registers the job, starts cron and runs one pass in the background.
func (w *Warmer) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", w.spec, err)
	}
	w.cron.Start()
	w.log.Info().Str("spec", w.spec).Msg("cache warmer started")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.RunOnce(ctx)
	}()
	return nil
}

// Stop waits for running passes to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	w.wg.Wait()
	w.log.Info().Msg("cache warmer stopped")
}

// RunOnce warms every combination and returns how many succeeded.
// It stops early when ctx is cancelled.
func (w *Warmer) RunOnce(ctx context.Context) int {
	warmed, failed := 0, 0
	for _, c := range Combinations() {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.searcher.Search(ctx, c, 1); err != nil {
			failed++
			w.log.Warn().Err(err).Str("interest", c.InterestQuery()).Str("grade", c.Grade()).Msg("warm search failed")
			continue
		}
		warmed++
	}
	w.log.Info().Int("warmed", warmed).Int("failed", failed).Msg("cache warm pass complete")
	return warmed
}

// Combinations lists one criteria per (interest, grade) pair.
func Combinations() []search.Criteria {
	out := make([]search.Criteria, 0, len(search.Interests)*len(search.Grades))
	for _, interest := range search.Interests {
		for _, grade := range search.Grades {
			c, err := search.Build([]string{interest}, grade)
			if err != nil {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
