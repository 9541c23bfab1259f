package finder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[int][]opportunity.Opportunity
	err     error
	calls   []int
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ search.Criteria, page int) ([]opportunity.Opportunity, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("quota exceeded")
}
func (failingStorage) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }
func (failingStorage) Remove(context.Context, string) error      { return errors.New("quota exceeded") }

func items(prefix string, n int) []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, opportunity.Opportunity{ID: fmt.Sprintf("%s-%d", prefix, i), Title: fmt.Sprintf("%s %d", prefix, i)})
	}
	return out
}

func ids(ops []opportunity.Opportunity) []string {
	out := make([]string, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.ID)
	}
	return out
}

func criteria(t *testing.T, interest, grade string) search.Criteria {
	t.Helper()
	c, err := search.Build([]string{interest}, grade)
	require.NoError(t, err)
	return c
}

func TestAggregator_FetchUntilExhausted(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("bio", 10), 2: {}}}
	a := NewAggregator(f, NewMemoryStorage(), Options{})
	a.SetCriteria(ctx, criteria(t, "BIOLOGY", "FRESHMEN"))

	p1, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Number)
	assert.False(t, p1.IsLast)

	p2, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Number)
	assert.True(t, p2.IsLast)

	assert.Len(t, a.CurrentResults(), 10)
	assert.True(t, a.Session().Exhausted())

	_, err = a.FetchNextPage(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, []int{1, 2}, f.calls)

	require.NoError(t, a.NotifyScrollNearEnd(ctx))
	assert.Equal(t, 2, f.callCount())
}

func TestAggregator_ShortPageExhaustsWithPageSize(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("law", 4)}}
	a := NewAggregator(f, NewMemoryStorage(), Options{PageSize: 10})
	a.SetCriteria(ctx, criteria(t, "LAW", "12"))

	p, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsLast)
	assert.True(t, a.Session().Exhausted())
}

func TestAggregator_DedupKeepsFirstSeen(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{
		1: {{ID: "x", Description: "first"}, {ID: "y"}},
		2: {{ID: "z"}, {ID: "x", Description: "second"}},
	}}
	a := NewAggregator(f, NewMemoryStorage(), Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))

	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	_, err = a.FetchNextPage(ctx)
	require.NoError(t, err)

	got := a.CurrentResults()
	assert.Equal(t, []string{"x", "y", "z"}, ids(got))
	assert.Equal(t, "first", got[0].Description)
}

func TestAggregator_CriteriaChangeInvalidates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("a", 3), 2: items("b", 3)}}
	a := NewAggregator(f, store, Options{})

	critA := criteria(t, "BIOLOGY", "9")
	critB := criteria(t, "PHYSICS", "10")

	a.SetCriteria(ctx, critA)
	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	_, err = a.FetchNextPage(ctx)
	require.NoError(t, err)
	require.Len(t, a.CurrentResults(), 6)
	require.Equal(t, 2, a.Session().CurrentPage())

	a.SetCriteria(ctx, critB)
	assert.Empty(t, a.CurrentResults())
	assert.Equal(t, 1, a.Session().CurrentPage())
	assert.False(t, a.Session().Exhausted())

	_, err = store.Get(ctx, KeyJobs)
	assert.ErrorIs(t, err, ErrNotFound)
	persisted, err := store.Get(ctx, KeySearchParams)
	require.NoError(t, err)
	assert.Equal(t, critB.Key(), string(persisted))

	_, err = a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1}, f.calls, "new criteria start from page 1")
}

func TestAggregator_SameCriteriaKeepsResults(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("a", 2)}}
	a := NewAggregator(f, NewMemoryStorage(), Options{})
	c := criteria(t, "LAW", "9")

	a.SetCriteria(ctx, c)
	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)

	same, err := search.Build([]string{"law"}, "FRESHMEN")
	require.NoError(t, err)
	a.SetCriteria(ctx, same)

	assert.Len(t, a.CurrentResults(), 2)
	assert.Equal(t, 1, a.Session().CurrentPage())
}

func TestAggregator_RestoreFromPersistence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	c := criteria(t, "ENGINEERING", "11")
	saved := []opportunity.Opportunity{{ID: "A", Title: "Robotics"}, {ID: "B", Title: "Bridges"}}
	jobs, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeySearchParams, []byte(c.Key())))
	require.NoError(t, store.Set(ctx, KeyJobs, jobs))

	f := &fakeFetcher{}
	a := NewAggregator(f, store, Options{})

	assert.True(t, a.RestoreFromPersistence(ctx))
	assert.Equal(t, []string{"A", "B"}, ids(a.CurrentResults()))
	assert.True(t, a.Session().Criteria().Equal(c))
	assert.Zero(t, f.callCount())

	// resuming continues after the restored page
	f.pages = map[int][]opportunity.Opportunity{2: {{ID: "C"}}}
	_, err = a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, f.calls)
	assert.Equal(t, []string{"A", "B", "C"}, ids(a.CurrentResults()))
}

func TestAggregator_RestoreDerivesPageFromPageSize(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	c := criteria(t, "LAW", "9")
	jobs, err := json.Marshal(items("l", 25))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeySearchParams, []byte(c.Key())))
	require.NoError(t, store.Set(ctx, KeyJobs, jobs))

	a := NewAggregator(&fakeFetcher{}, store, Options{PageSize: 10})
	require.True(t, a.RestoreFromPersistence(ctx))
	assert.Equal(t, 3, a.Session().CurrentPage())
	assert.Equal(t, 4, a.Session().NextPage())
}

func TestAggregator_SetCriteriaPicksUpPersistedSearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	c := criteria(t, "LAW", "9")
	jobs, err := json.Marshal(items("l", 2))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeySearchParams, []byte(c.Key())))
	require.NoError(t, store.Set(ctx, KeyJobs, jobs))

	a := NewAggregator(&fakeFetcher{}, store, Options{})
	a.SetCriteria(ctx, c)
	assert.Len(t, a.CurrentResults(), 2)
}

func TestAggregator_RestoreMisses(t *testing.T) {
	ctx := context.Background()

	a := NewAggregator(&fakeFetcher{}, NewMemoryStorage(), Options{})
	assert.False(t, a.RestoreFromPersistence(ctx))

	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, KeySearchParams, []byte(`{"interest":"BIOLOGY","grade":"9"}`)))
	require.NoError(t, store.Set(ctx, KeyJobs, []byte(`not json`)))
	a = NewAggregator(&fakeFetcher{}, store, Options{})
	assert.False(t, a.RestoreFromPersistence(ctx))

	a = NewAggregator(&fakeFetcher{}, failingStorage{}, Options{})
	assert.False(t, a.RestoreFromPersistence(ctx))
	assert.Empty(t, a.CurrentResults())
}

func TestAggregator_StorageFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("x", 2)}}
	a := NewAggregator(f, failingStorage{}, Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))

	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Len(t, a.CurrentResults(), 2)
}

func TestAggregator_FetchErrorKeepsState(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("a", 2), 2: items("b", 2)}}
	a := NewAggregator(f, NewMemoryStorage(), Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))
	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)

	f.err = errors.New("connection reset")
	_, err = a.FetchNextPage(ctx)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Page)
	assert.Equal(t, 1, a.Session().CurrentPage())
	assert.Len(t, a.CurrentResults(), 2)
	assert.False(t, a.IsFetching())

	f.err = nil
	_, err = a.FetchNextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2}, f.calls, "retry asks for the same page")
	assert.Len(t, a.CurrentResults(), 4)
}

func TestAggregator_FetchWithoutCriteria(t *testing.T) {
	a := NewAggregator(&fakeFetcher{}, NewMemoryStorage(), Options{})
	_, err := a.FetchNextPage(context.Background())
	assert.ErrorIs(t, err, ErrNoCriteria)
	assert.NoError(t, a.NotifyScrollNearEnd(context.Background()))
}

func TestAggregator_ConcurrentFetchesCoalesce(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{
		pages:   map[int][]opportunity.Opportunity{1: items("a", 3)},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	a := NewAggregator(f, NewMemoryStorage(), Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))

	type result struct {
		page ResultPage
		err  error
	}
	results := make(chan result, 2)
	fetch := func() {
		p, err := a.FetchNextPage(ctx)
		results <- result{p, err}
	}

	go fetch()
	<-f.entered
	assert.True(t, a.IsFetching())

	go fetch()
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.inflight != nil && a.inflight.waiters == 1
	}, time.Second, time.Millisecond)

	// scroll events while pending are ignored
	require.NoError(t, a.NotifyScrollNearEnd(ctx))

	close(f.block)
	r1, r2 := <-results, <-results
	require.NoError(t, r1.err)
	require.NoError(t, r2.err)
	assert.Equal(t, r1.page, r2.page)
	assert.Equal(t, 1, f.callCount())
	assert.Len(t, a.CurrentResults(), 3)
}

func TestAggregator_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	f := &fakeFetcher{
		pages:   map[int][]opportunity.Opportunity{1: items("old", 3)},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	store := NewMemoryStorage()
	a := NewAggregator(f, store, Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))

	errs := make(chan error, 1)
	go func() {
		_, err := a.FetchNextPage(ctx)
		errs <- err
	}()
	<-f.entered

	critB := criteria(t, "PHYSICS", "12")
	a.SetCriteria(ctx, critB)
	assert.False(t, a.IsFetching(), "pending fetch belongs to the old criteria")

	close(f.block)
	assert.ErrorIs(t, <-errs, ErrStaleResponse)
	assert.Empty(t, a.CurrentResults())
	assert.True(t, a.Session().Criteria().Equal(critB))

	_, err := store.Get(ctx, KeyJobs)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAggregator_PersistsAfterFetch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("p", 2)}}
	a := NewAggregator(f, store, Options{})
	c := criteria(t, "PHYSICS", "12")
	a.SetCriteria(ctx, c)
	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)

	raw, err := store.Get(ctx, KeyJobs)
	require.NoError(t, err)
	var persisted []opportunity.Opportunity
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, []string{"p-0", "p-1"}, ids(persisted))

	params, err := store.Get(ctx, KeySearchParams)
	require.NoError(t, err)
	assert.Equal(t, c.Key(), string(params))

	// a second client on the same storage restores without fetching
	b := NewAggregator(&fakeFetcher{}, store, Options{})
	require.True(t, b.RestoreFromPersistence(ctx))
	assert.Equal(t, ids(a.CurrentResults()), ids(b.CurrentResults()))
}
