package knowledge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"complyscan.app/engine/internal/model"
)

const defaultCacheKey = "complyscan:requirements_snapshot"

// Store holds the process-wide knowledge base. The current snapshot is an
// atomically swapped immutable value: readers always observe one consistent
// snapshot even while a refresh is in flight.
type Store struct {
	current  atomic.Pointer[model.RequirementsSnapshot]
	fetcher  Fetcher
	cache    *redis.Client
	cacheKey string
	cacheTTL time.Duration
}

// StoreConfig configures a Store. Fetcher may be nil for deployments that
// run entirely on the frozen snapshot. Cache is optional; when set, live
// snapshots are cached so restarts do not re-scrape the source.
type StoreConfig struct {
	Fetcher  Fetcher
	Cache    *redis.Client
	CacheKey string
	CacheTTL time.Duration
}

// NewStore creates a Store seeded with the frozen snapshot. Call Acquire to
// attempt a live load.
func NewStore(cfg StoreConfig) *Store {
	cacheKey := cfg.CacheKey
	if cacheKey == "" {
		cacheKey = defaultCacheKey
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}

	s := &Store{
		fetcher:  cfg.Fetcher,
		cache:    cfg.Cache,
		cacheKey: cacheKey,
		cacheTTL: cacheTTL,
	}
	s.current.Store(Frozen())
	return s
}

// Snapshot returns the current snapshot. The returned value is immutable.
func (s *Store) Snapshot() *model.RequirementsSnapshot {
	return s.current.Load()
}

// Acquire attempts to load a live snapshot (cache first, then the fetcher)
// and installs it. On any failure it installs the frozen snapshot instead.
// Acquire never returns an error: degradation to frozen data is the designed
// behavior, not a failure mode.
func (s *Store) Acquire(ctx context.Context) *model.RequirementsSnapshot {
	if snapshot := s.fromCache(ctx); snapshot != nil {
		s.current.Store(snapshot)
		slog.InfoContext(ctx, "knowledge base loaded from cache", "fetched_at", snapshot.FetchedAt)
		return snapshot
	}

	if snapshot := s.fetchLive(ctx); snapshot != nil {
		s.current.Store(snapshot)
		return snapshot
	}

	frozen := Frozen()
	s.current.Store(frozen)
	slog.InfoContext(ctx, "knowledge base using frozen snapshot")
	return frozen
}

// Refresh attempts a new live fetch and atomically swaps the snapshot on
// success. On failure the prior snapshot stays in effect. Returns whether
// the snapshot changed.
func (s *Store) Refresh(ctx context.Context) bool {
	snapshot := s.fetchLive(ctx)
	if snapshot == nil {
		slog.WarnContext(ctx, "knowledge refresh failed, keeping current snapshot")
		return false
	}
	s.current.Store(snapshot)
	return true
}

// fetchLive runs the fetcher and validates the result. Incomplete snapshots
// (an empty requirements list or missing categories) are treated the same
// as fetch errors.
func (s *Store) fetchLive(ctx context.Context) *model.RequirementsSnapshot {
	if s.fetcher == nil {
		return nil
	}

	snapshot, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		slog.WarnContext(ctx, "live knowledge fetch failed", "error", err)
		return nil
	}
	if snapshot == nil || !snapshot.Complete() {
		slog.WarnContext(ctx, "live knowledge fetch returned incomplete snapshot")
		return nil
	}

	snapshot.IsLiveData = true
	s.toCache(ctx, snapshot)
	slog.InfoContext(ctx, "live knowledge base fetched",
		"requirements", len(snapshot.KeyRequirements))
	return snapshot
}

func (s *Store) fromCache(ctx context.Context) *model.RequirementsSnapshot {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, s.cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "snapshot cache read failed", "error", err)
		}
		return nil
	}

	var snapshot model.RequirementsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		slog.WarnContext(ctx, "snapshot cache entry malformed, ignoring", "error", err)
		return nil
	}
	if !snapshot.Complete() {
		return nil
	}
	return &snapshot
}

func (s *Store) toCache(ctx context.Context, snapshot *model.RequirementsSnapshot) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.WarnContext(ctx, "snapshot cache marshal failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey, data, s.cacheTTL).Err(); err != nil {
		// Cache writes are best effort; the in-memory snapshot is authoritative.
		slog.WarnContext(ctx, "snapshot cache write failed", "error", err)
	}
}
