package finder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuimpact/stuimpactweb2/pkg/cache"
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.Get(ctx, KeyJobs)
	assert.ErrorIs(t, err, ErrNotFound)

	v := []byte(`[]`)
	require.NoError(t, s.Set(ctx, KeyJobs, v))
	v[0] = 'x'
	got, err := s.Get(ctx, KeyJobs)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "stored value is a copy")

	require.NoError(t, s.Remove(ctx, KeyJobs))
	require.NoError(t, s.Remove(ctx, KeyJobs))
	_, err = s.Get(ctx, KeyJobs)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreStorageIsolatesVisitors(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryStore(16, time.Minute)
	alice := NewStoreStorage(backend, "alice", time.Minute)
	bob := NewStoreStorage(backend, "bob", time.Minute)

	require.NoError(t, alice.Set(ctx, KeySearchParams, []byte("a")))
	_, err := bob.Get(ctx, KeySearchParams)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := alice.Get(ctx, KeySearchParams)
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	require.NoError(t, alice.Remove(ctx, KeySearchParams))
	_, err = alice.Get(ctx, KeySearchParams)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAggregatorOverStoreStorage(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryStore(16, time.Minute)
	f := &fakeFetcher{pages: map[int][]opportunity.Opportunity{1: items("s", 3)}}

	a := NewAggregator(f, NewStoreStorage(backend, "v1", time.Minute), Options{})
	a.SetCriteria(ctx, criteria(t, "LAW", "9"))
	_, err := a.FetchNextPage(ctx)
	require.NoError(t, err)

	b := NewAggregator(&fakeFetcher{}, NewStoreStorage(backend, "v1", time.Minute), Options{})
	require.True(t, b.RestoreFromPersistence(ctx))
	assert.Len(t, b.CurrentResults(), 3)
}
