// Package finder drives the client side of opportunity search: it tracks the
// active criteria, fetches result pages one at a time, de-duplicates them and
// persists the accumulated list so it survives reloads.
package finder

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stuimpact/stuimpactweb2/pkg/logger"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// Fetcher performs one search request.
type Fetcher interface {
	FetchPage(ctx context.Context, c search.Criteria, page int) ([]opportunity.Opportunity, error)
}

// Options tune the Aggregator.
type Options struct {
	// PageSize, when set, lets a short page mark the session exhausted and
	// lets restored sessions resume at the right page. Zero means only an
	// empty page exhausts.
	PageSize int
}

// fetchCall is the single in-flight request of a session generation.
type fetchCall struct {
	generation uint64
	done       chan struct{}
	page       ResultPage
	err        error
	waiters    int
}

// Aggregator owns a Session and is safe for concurrent use. At most one
// fetch per session generation is in flight; concurrent callers share it.
type Aggregator struct {
	fetcher  Fetcher
	storage  Storage
	pageSize int
	log      zerolog.Logger

	mu       sync.Mutex
	session  Session
	inflight *fetchCall
}

func NewAggregator(fetcher Fetcher, storage Storage, opts Options) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		storage:  storage,
		pageSize: opts.PageSize,
		log:      logger.Component("finder"),
		session:  Session{currentPage: 1},
	}
}

// Session returns a snapshot of the current state.
func (a *Aggregator) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// CurrentResults returns the accumulated results in first-seen order.
func (a *Aggregator) CurrentResults() []opportunity.Opportunity {
	return a.Session().Results()
}

// IsFetching reports whether a request for the current criteria is pending.
func (a *Aggregator) IsFetching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetchingLocked()
}

func (a *Aggregator) fetchingLocked() bool {
	return a.inflight != nil && a.inflight.generation == a.session.generation
}

// SetCriteria installs c. When its serialization differs from the persisted
// one the results are cleared, the page resets and the new criteria are
// persisted. It never fetches.
func (a *Aggregator) SetCriteria(ctx context.Context, c search.Criteria) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := c.Key()
	persisted, ok := a.read(ctx, KeySearchParams)
	if ok && string(persisted) == key {
		if a.session.criteria.Equal(c) {
			return
		}
		// same search as the persisted one, pick its results up
		if s, ok := a.loadLocked(ctx); ok && s.criteria.Equal(c) {
			a.session = s
			return
		}
	}

	a.session = a.session.WithCriteria(c)
	if a.session.Len() > 0 || a.session.started {
		// persisted key lost but memory still holds this search
		a.write(ctx, KeySearchParams, []byte(key))
		return
	}
	a.remove(ctx, KeyJobs)
	a.write(ctx, KeySearchParams, []byte(key))
}

// FetchNextPage requests the page after the current one and merges it.
// Calls made while a fetch is pending wait for and share that fetch.
func (a *Aggregator) FetchNextPage(ctx context.Context) (ResultPage, error) {
	a.mu.Lock()
	if call := a.inflight; call != nil && call.generation == a.session.generation {
		call.waiters++
		a.mu.Unlock()
		select {
		case <-call.done:
			return call.page, call.err
		case <-ctx.Done():
			return ResultPage{}, ctx.Err()
		}
	}
	if a.session.criteria.IsZero() {
		a.mu.Unlock()
		return ResultPage{}, ErrNoCriteria
	}
	if a.session.exhausted {
		a.mu.Unlock()
		return ResultPage{}, ErrExhausted
	}
	call := &fetchCall{generation: a.session.generation, done: make(chan struct{})}
	a.inflight = call
	criteria, page := a.session.criteria, a.session.NextPage()
	a.mu.Unlock()

	items, err := a.fetcher.FetchPage(ctx, criteria, page)

	a.mu.Lock()
	call.page, call.err = a.completeLocked(ctx, call.generation, page, items, err)
	if a.inflight == call {
		a.inflight = nil
	}
	a.mu.Unlock()
	close(call.done)
	return call.page, call.err
}

func (a *Aggregator) completeLocked(ctx context.Context, generation uint64, page int, items []opportunity.Opportunity, err error) (ResultPage, error) {
	if generation != a.session.generation {
		a.log.Debug().Int("page", page).Msg("dropping response for replaced criteria")
		return ResultPage{}, ErrStaleResponse
	}
	if err != nil {
		a.log.Warn().Err(err).Int("page", page).Msg("search fetch failed")
		return ResultPage{}, &FetchError{Page: page, Err: err}
	}
	rp := ResultPage{
		Number: page,
		Items:  items,
		IsLast: len(items) == 0 || (a.pageSize > 0 && len(items) < a.pageSize),
	}
	a.session = a.session.Merge(rp)
	a.persistLocked(ctx)
	return rp, nil
}

// NotifyScrollNearEnd is called by the UI when the viewport nears the end of
// the rendered results. It fetches unless the session is exhausted or a
// fetch is already pending, in which case it returns immediately.
func (a *Aggregator) NotifyScrollNearEnd(ctx context.Context) error {
	a.mu.Lock()
	idle := !a.session.criteria.IsZero() && !a.session.exhausted && !a.fetchingLocked()
	a.mu.Unlock()
	if !idle {
		return nil
	}
	_, err := a.FetchNextPage(ctx)
	if errors.Is(err, ErrExhausted) || errors.Is(err, ErrStaleResponse) {
		return nil
	}
	return err
}

// RestoreFromPersistence loads previously persisted criteria and results
// without fetching. It reports whether anything was restored; storage
// problems count as a miss.
func (a *Aggregator) RestoreFromPersistence(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.loadLocked(ctx)
	if !ok {
		return false
	}
	a.session = s
	return true
}

func (a *Aggregator) loadLocked(ctx context.Context) (Session, bool) {
	rawCriteria, ok := a.read(ctx, KeySearchParams)
	if !ok {
		return Session{}, false
	}
	rawJobs, ok := a.read(ctx, KeyJobs)
	if !ok {
		return Session{}, false
	}
	var c search.Criteria
	if err := json.Unmarshal(rawCriteria, &c); err != nil {
		a.log.Warn().Err(&StorageError{Op: "decode", Key: KeySearchParams, Err: err}).Msg("ignoring persisted criteria")
		return Session{}, false
	}
	var items []opportunity.Opportunity
	if err := json.Unmarshal(rawJobs, &items); err != nil {
		a.log.Warn().Err(&StorageError{Op: "decode", Key: KeyJobs, Err: err}).Msg("ignoring persisted results")
		return Session{}, false
	}
	generation := a.session.generation
	if !a.session.criteria.Equal(c) {
		generation++
	}
	return restored(c, items, generation, a.pageSize), true
}

func (a *Aggregator) persistLocked(ctx context.Context) {
	jobs, err := json.Marshal(a.session.Results())
	if err != nil {
		a.log.Warn().Err(err).Msg("encode results")
		return
	}
	a.write(ctx, KeyJobs, jobs)
	a.write(ctx, KeySearchParams, []byte(a.session.criteria.Key()))
}

func (a *Aggregator) read(ctx context.Context, key string) ([]byte, bool) {
	b, err := a.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Warn().Err(&StorageError{Op: "get", Key: key, Err: err}).Msg("treating as cache miss")
		}
		return nil, false
	}
	return b, true
}

func (a *Aggregator) write(ctx context.Context, key string, value []byte) {
	if err := a.storage.Set(ctx, key, value); err != nil {
		a.log.Warn().Err(&StorageError{Op: "set", Key: key, Err: err}).Msg("persist skipped")
	}
}

func (a *Aggregator) remove(ctx context.Context, key string) {
	if err := a.storage.Remove(ctx, key); err != nil {
		a.log.Warn().Err(&StorageError{Op: "remove", Key: key, Err: err}).Msg("remove skipped")
	}
}
