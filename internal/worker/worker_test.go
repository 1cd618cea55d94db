package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chat-order-service/internal/broker"
	"chat-order-service/internal/matcher"
	"chat-order-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	refreshes   atomic.Int32
	invalidated atomic.Int32
	err         error
}

func (f *fakeCatalog) Refresh(ctx context.Context) (*matcher.Index, error) {
	f.refreshes.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return matcher.NewIndex([]models.CatalogItem{{ID: 1, Name: "Adobo", Price: 75, IsAvailable: true}}), nil
}

func (f *fakeCatalog) Invalidate() {
	f.invalidated.Add(1)
}

type replaySource struct {
	msgs   []kafka.Message
	closed bool
}

func (r *replaySource) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for _, msg := range r.msgs {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *replaySource) Close() error {
	r.closed = true
	return nil
}

type fakeSweeper struct {
	mu    sync.Mutex
	ttls  []time.Duration
	swept int
}

func (f *fakeSweeper) Sweep(idle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls = append(f.ttls, idle)
	return f.swept
}

func (f *fakeSweeper) Len() int { return 0 }

func (f *fakeSweeper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ttls)
}

func TestCatalogWorkerInvalidatesOnMenuEvents(t *testing.T) {
	value, err := json.Marshal(models.MenuEvent{
		BaseEvent:  models.BaseEvent{EventID: "e1", EventType: models.EventTypeMenuItemRemoved},
		MenuItemID: 4,
	})
	require.NoError(t, err)
	other, err := json.Marshal(models.BaseEvent{EventID: "e2", EventType: models.EventTypeOrderPlaced})
	require.NoError(t, err)

	catalog := &fakeCatalog{}
	source := &replaySource{msgs: []kafka.Message{{Value: value}, {Value: other}}}
	w := NewCatalogWorker(source, catalog)

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, int32(1), catalog.invalidated.Load())

	require.NoError(t, w.Stop())
	assert.True(t, source.closed)
}

func TestCatalogWarmerWarmsOnce(t *testing.T) {
	catalog := &fakeCatalog{}

	err := NewCatalogWarmer(catalog, 0).Start(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int32(1), catalog.refreshes.Load())
}

func TestCatalogWarmerKeepsRefreshingAfterFailure(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- NewCatalogWarmer(catalog, 5*time.Millisecond).Start(ctx) }()

	require.Eventually(t, func() bool { return catalog.refreshes.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSessionSweeperUsesTTL(t *testing.T) {
	sessions := &fakeSweeper{swept: 2}
	s := NewSessionSweeper(sessions, 30*time.Minute, 5*time.Millisecond)

	assert.Equal(t, 2, s.SweepOnce())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return sessions.calls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	for _, ttl := range sessions.ttls {
		assert.Equal(t, 30*time.Minute, ttl)
	}
}

func TestSessionSweeperDisabled(t *testing.T) {
	sessions := &fakeSweeper{}
	s := NewSessionSweeper(sessions, 0, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, sessions.calls())
}
