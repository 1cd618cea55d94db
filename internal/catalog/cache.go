package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"
	"chat-order-service/internal/util"

	"go.uber.org/zap"
)

// Source lists the currently available menu items
type Source interface {
	ListAvailableItems(ctx context.Context) ([]models.CatalogItem, error)
}

type snapshot struct {
	index     *matcher.Index
	fetchedAt time.Time
}

// Cache serves a matcher index built from the catalog source and rebuilds it
// at most once per refresh period. Readers never block on each other; a
// refresh is performed by a single caller while others wait for it.
type Cache struct {
	source  Source
	refresh time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewCache creates a catalog cache; refresh <= 0 disables caching
func NewCache(source Source, refresh time.Duration) *Cache {
	return &Cache{
		source:  source,
		refresh: refresh,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// Snapshot returns the cached index, refreshing it when it is older than the
// refresh period. If a refresh fails and an older index exists, the older
// index keeps being served for another period.
func (c *Cache) Snapshot(ctx context.Context) (*matcher.Index, error) {
	if s := c.current.Load(); s != nil && c.fresh(s) {
		return s.index, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current.Load()
	if s != nil && c.fresh(s) {
		return s.index, nil
	}

	index, err := c.load(ctx)
	if err != nil {
		if s == nil {
			return nil, err
		}
		c.logger.Warn("Catalog refresh failed, serving stale snapshot",
			zap.Int("items", s.index.Len()),
			zap.Time("fetched_at", s.fetchedAt),
			zap.Error(err))
		c.current.Store(&snapshot{index: s.index, fetchedAt: c.now()})
		return s.index, nil
	}
	return index, nil
}

// Refresh rebuilds the index unconditionally
func (c *Cache) Refresh(ctx context.Context) (*matcher.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Invalidate marks the current snapshot stale so the next Snapshot reloads
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.current.Load(); s != nil {
		c.current.Store(&snapshot{index: s.index})
	}
}

func (c *Cache) fresh(s *snapshot) bool {
	if c.refresh <= 0 || s.fetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(s.fetchedAt) < c.refresh
}

// load must be called with c.mu held
func (c *Cache) load(ctx context.Context) (*matcher.Index, error) {
	ctx, span := util.StartSpan(ctx, "CatalogCache.Refresh")
	defer span.End()

	start := time.Now()
	items, err := c.source.ListAvailableItems(ctx)
	util.CatalogRefreshLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	available := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.IsAvailable {
			available = append(available, item)
		}
	}

	index := matcher.NewIndex(available)
	c.current.Store(&snapshot{index: index, fetchedAt: c.now()})

	util.CatalogRefreshTotal.WithLabelValues("success").Inc()
	util.CatalogItems.Set(float64(index.Len()))
	c.logger.Debug("Catalog snapshot rebuilt", zap.Int("items", index.Len()))
	return index, nil
}
