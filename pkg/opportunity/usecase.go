package opportunity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/stuimpact/stuimpactweb2/pkg/cache"
	"github.com/stuimpact/stuimpactweb2/pkg/logger"
	"github.com/stuimpact/stuimpactweb2/pkg/metrics"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// UseCase covers catalog search and maintenance.
type UseCase interface {
	Search(ctx context.Context, c search.Criteria, page int) (Page, error)
	GetByID(ctx context.Context, id string) (Opportunity, error)
	Save(ctx context.Context, o Opportunity) (Opportunity, error)
}

// ErrValidation is returned by Save for malformed catalog entries.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// generationKey holds the token every cached page key is built from. Save
// replaces it, which orphans the pages of every replica sharing the store.
const generationKey = "search:gen"

type Options struct {
	PageSize int
	CacheTTL time.Duration
}

type service struct {
	repo     Repository
	cache    cache.Store
	pageSize int
	ttl      time.Duration
	group    singleflight.Group
	log      zerolog.Logger
}

// NewService returns the default UseCase. store may be nil to disable caching.
func NewService(repo Repository, store cache.Store, opts Options) UseCase {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &service{
		repo:     repo,
		cache:    store,
		pageSize: opts.PageSize,
		ttl:      opts.CacheTTL,
		log:      logger.Component("opportunity"),
	}
}

func (s *service) Search(ctx context.Context, c search.Criteria, page int) (Page, error) {
	if c.IsZero() {
		return Page{}, &search.ValidationError{Reason: search.ReasonMissingFields}
	}
	if page < 1 {
		page = 1
	}
	gen, cached := s.generation(ctx)
	key := s.cacheKey(gen, c, page)

	if cached {
		if p, ok := s.fromCache(ctx, key); ok {
			metrics.SearchCacheLookups.WithLabelValues("hit").Inc()
			return p, nil
		}
	}
	metrics.SearchCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := s.group.Do(key, func() (any, error) {
		items, err := s.repo.Search(ctx, c.Tags(), s.pageSize, (page-1)*s.pageSize)
		if err != nil {
			return Page{}, fmt.Errorf("search catalog: %w", err)
		}
		if items == nil {
			items = []Opportunity{}
		}
		p := Page{Number: page, Items: items, IsLast: len(items) < s.pageSize}
		if cached {
			s.toCache(ctx, key, p)
		}
		return p, nil
	})
	if err != nil {
		return Page{}, err
	}
	p := v.(Page)
	p.Items = slices.Clone(p.Items)
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (Opportunity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Opportunity{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Save(ctx context.Context, o Opportunity) (Opportunity, error) {
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		return Opportunity{}, ErrValidation("title is required")
	}
	if len(o.Tags) == 0 {
		return Opportunity{}, ErrValidation("at least one tag is required")
	}
	tags := make([]string, 0, len(o.Tags))
	for _, t := range o.Tags {
		if !search.IsKnownTag(t) {
			return Opportunity{}, ErrValidation(fmt.Sprintf("unknown tag %q", t))
		}
		tags = append(tags, strings.ToUpper(strings.TrimSpace(t)))
	}
	o.Tags = tags
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Upsert(ctx, o); err != nil {
		return Opportunity{}, err
	}
	if s.cache != nil {
		if _, ok := s.newGeneration(ctx); !ok {
			s.log.Error().Str("id", o.ID).Msg("search cache not invalidated, pages may be stale until they expire")
		}
	}
	return o, nil
}

// generation returns the current cache key space, creating one when the
// store has none. ok is false when caching is off or the store is failing.
func (s *service) generation(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	b, err := s.cache.Get(ctx, generationKey)
	switch {
	case err == nil && len(b) > 0:
		return string(b), true
	case err != nil && !errors.Is(err, cache.ErrMiss):
		s.log.Warn().Err(err).Msg("search cache generation read failed")
		return "", false
	}
	return s.newGeneration(ctx)
}

func (s *service) newGeneration(ctx context.Context) (string, bool) {
	gen := uuid.NewString()
	if err := s.cache.Set(ctx, generationKey, []byte(gen), 0); err != nil {
		s.log.Warn().Err(err).Msg("search cache generation write failed")
		return "", false
	}
	return gen, true
}

func (s *service) cacheKey(gen string, c search.Criteria, page int) string {
	return fmt.Sprintf("search:%s:%d:%d:%s", gen, s.pageSize, page, c.Key())
}

func (s *service) fromCache(ctx context.Context, key string) (Page, bool) {
	if s.cache == nil {
		return Page{}, false
	}
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		}
		return Page{}, false
	}
	var p Page
	if err := json.Unmarshal(b, &p); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("search cache entry corrupt")
		return Page{}, false
	}
	return p, true
}

func (s *service) toCache(ctx context.Context, key string, p Page) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("search cache write failed")
	}
}
