package services

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
	"github.com/dmitrijs2005/rdb/internal/server/repositories/repomanager"
)

const countKey = "\x00count"

// ModService serves the read side. Single mods and the total count are cached
// for a short TTL (a TTL of zero disables the cache); it implements Hook to
// drop stale entries after writes.
//
// A read that overlaps a write must not cache what it read: every write bumps
// gen, and a read only caches when gen is unchanged since it started.
type ModService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *gocache.Cache
	cached      bool
	timeout     time.Duration
	log         logging.Logger

	mu  sync.Mutex
	gen atomic.Uint64
}

func NewModService(db *sql.DB, repomanager repomanager.RepositoryManager, ttl, timeout time.Duration, log logging.Logger) *ModService {
	return &ModService{
		db:          db,
		repomanager: repomanager,
		cache:       gocache.New(ttl, 2*ttl),
		cached:      ttl > 0,
		timeout:     timeout,
		log:         log,
	}
}

// Get returns the mod stored under id or common.ErrorNotFound. The result is
// shared with the cache and must not be modified.
func (s *ModService) Get(ctx context.Context, id string) (*models.ModEntry, error) {
	if v, ok := s.cache.Get(id); ok {
		if entry, ok := v.(*models.ModEntry); ok {
			return entry, nil
		}
		s.log.Error(ctx, "wrong type in mod cache", "key", id)
	}

	gen := s.gen.Load()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.repomanager.Mods(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(gen, id, entry)
	return entry, nil
}

// List returns one page of mods. Listings are not cached.
func (s *ModService) List(ctx context.Context, q models.ListQuery) ([]*models.ModEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repomanager.Mods(s.db).List(ctx, q)
}

func (s *ModService) Count(ctx context.Context) (int64, error) {
	if v, ok := s.cache.Get(countKey); ok {
		if n, ok := v.(int64); ok {
			return n, nil
		}
	}

	gen := s.gen.Load()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repomanager.Mods(s.db).Count(ctx)
	if err != nil {
		return 0, err
	}
	s.store(gen, countKey, n)
	return n, nil
}

// store caches v under key unless a write happened after gen was read.
func (s *ModService) store(gen uint64, key string, v any) {
	if !s.cached {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen.Load() != gen {
		return
	}
	s.cache.SetDefault(key, v)
}

// AfterWrite forgets the written mod, and the count when a mod was created.
func (s *ModService) AfterWrite(ctx context.Context, entry *models.ModEntry, outcome models.Outcome) {
	s.mu.Lock()
	s.gen.Add(1)
	s.cache.Delete(entry.ID)
	if outcome == models.OutcomeCreated {
		s.cache.Delete(countKey)
	}
	s.mu.Unlock()
	s.log.Debug(ctx, "mod cache invalidated", "mod_id", entry.ID)
}
