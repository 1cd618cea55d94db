package worker

import (
	"context"
	"time"

	"chat-order-service/internal/broker"
	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"
	"chat-order-service/internal/util"

	"go.uber.org/zap"
)

// MessageSource is a consumer that feeds messages to a handler until ctx ends
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// CatalogRefresher is the part of the catalog cache the workers drive
type CatalogRefresher interface {
	Refresh(ctx context.Context) (*matcher.Index, error)
	Invalidate()
}

// Sweeper drops idle sessions
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// CatalogWorker invalidates the catalog snapshot when the menu changes, so
// the next chat message sees the new items instead of waiting out the TTL.
type CatalogWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	catalog      CatalogRefresher
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer MessageSource, catalog CatalogRefresher) *CatalogWorker {
	w := &CatalogWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		catalog:      catalog,
	}
	w.eventHandler.OnMenuChanged(w.handleMenuChanged)
	return w
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting catalog worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	util.GetLogger().Info("Stopping catalog worker")
	return w.consumer.Close()
}

func (w *CatalogWorker) handleMenuChanged(ctx context.Context, event *models.MenuEvent) error {
	util.GetLogger().Info("Menu changed, invalidating catalog snapshot",
		zap.String("event_type", event.EventType),
		zap.Int64("menu_item_id", event.MenuItemID))
	w.catalog.Invalidate()
	return nil
}

// CatalogWarmer loads the catalog at startup and refreshes it on an interval
// so chat requests rarely pay for a reload.
type CatalogWarmer struct {
	catalog  CatalogRefresher
	interval time.Duration
}

// NewCatalogWarmer creates a warmer; interval <= 0 only warms once
func NewCatalogWarmer(catalog CatalogRefresher, interval time.Duration) *CatalogWarmer {
	return &CatalogWarmer{catalog: catalog, interval: interval}
}

// Start warms the catalog and keeps refreshing it until ctx ends
func (w *CatalogWarmer) Start(ctx context.Context) error {
	w.refresh(ctx)
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CatalogWarmer) refresh(ctx context.Context) {
	index, err := w.catalog.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			util.GetLogger().Warn("Catalog refresh failed", zap.Error(err))
		}
		return
	}
	util.GetLogger().Debug("Catalog refreshed", zap.Int("items", index.Len()))
}

// SessionSweeper periodically drops sessions idle longer than ttl
type SessionSweeper struct {
	sessions Sweeper
	ttl      time.Duration
	interval time.Duration
}

// NewSessionSweeper creates a sweeper; ttl <= 0 disables sweeping
func NewSessionSweeper(sessions Sweeper, ttl, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{sessions: sessions, ttl: ttl, interval: interval}
}

// Start sweeps on every tick until ctx ends
func (s *SessionSweeper) Start(ctx context.Context) error {
	if s.ttl <= 0 {
		util.GetLogger().Info("Session sweeping disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs a single sweep and returns how many sessions were dropped
func (s *SessionSweeper) SweepOnce() int {
	removed := s.sessions.Sweep(s.ttl)
	if removed > 0 {
		util.SessionsSweptTotal.Add(float64(removed))
		util.GetLogger().Info("Swept idle sessions", zap.Int("removed", removed))
	}
	util.ActiveSessions.Set(float64(s.sessions.Len()))
	return removed
}
