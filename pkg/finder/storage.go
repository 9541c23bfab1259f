package finder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stuimpact/stuimpactweb2/pkg/cache"
)

// Keys of the persisted client state. Both are cleared together when the
// criteria change.
const (
	KeySearchParams = "searchParams"
	KeyJobs         = "jobs"
)

// ErrNotFound is returned by Storage.Get for absent keys.
var ErrNotFound = errors.New("finder: key not found")

// Storage is the durable client-side key/value store the Aggregator persists
// into.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// StoreStorage persists client state in a cache.Store (Redis in production),
// namespaced per visitor so several clients can share one backend.
type StoreStorage struct {
	store  cache.Store
	prefix string
	ttl    time.Duration
}

func NewStoreStorage(store cache.Store, visitorID string, ttl time.Duration) *StoreStorage {
	return &StoreStorage{store: store, prefix: "finder:" + visitorID + ":", ttl: ttl}
}

func (s *StoreStorage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.store.Get(ctx, s.prefix+key)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *StoreStorage) Set(ctx context.Context, key string, value []byte) error {
	return s.store.Set(ctx, s.prefix+key, value, s.ttl)
}

func (s *StoreStorage) Remove(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.prefix+key)
}
