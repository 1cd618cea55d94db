package service

import (
	"context"
	"fmt"
	"time"

	"chat-order-service/internal/models"
	"chat-order-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleCheckout persists the cart while the session lock is held, so a
// duplicated checkout for the same session waits and then sees an empty cart.
// The idempotency key (instance, session, version) also lets the order store
// return the already persisted order if a timed out attempt is retried.
func (s *ChatService) handleCheckout(t *turn) error {
	ctx, span := util.StartSpan(t.ctx, "ChatService.Checkout")
	defer span.End()

	logger := util.SessionLogger(t.sess.ID)

	if len(t.sess.Cart) == 0 {
		util.CheckoutsTotal.WithLabelValues("empty").Inc()
		return ErrEmptyOrder
	}
	if !t.identity.Authenticated() {
		util.CheckoutsTotal.WithLabelValues("unauthenticated").Inc()
		return ErrAuthenticationRequired
	}

	lines := make([]models.CartLine, len(t.sess.Cart))
	copy(lines, t.sess.Cart)
	total := t.sess.Total()
	key := fmt.Sprintf("%s:%s:%d", s.instanceID, t.sess.ID, t.sess.Version)

	claimed, err := s.claimFence(ctx, key)
	if err != nil {
		util.CheckoutsTotal.WithLabelValues("conflict").Inc()
		return err
	}

	req := &models.OrderRequest{
		UserID:         t.identity.UserID,
		CustomerName:   t.identity.Name,
		Lines:          lines,
		TotalAmount:    total,
		IdempotencyKey: key,
	}

	persistCtx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	start := time.Now()
	order, err := s.orders.CreateOrder(persistCtx, req)
	util.OrderPersistLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.SpanError(span, err)
		util.CheckoutsTotal.WithLabelValues("persistence_error").Inc()
		logger.Error("Failed to persist order",
			zap.String("user_id", req.UserID),
			zap.Int64("total_amount", total),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		if claimed {
			s.releaseFence(key)
		}
		return persistenceError(err)
	}

	util.CheckoutsTotal.WithLabelValues("success").Inc()
	logger.Info("Order placed",
		zap.Int64("order_id", order.OrderID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total_amount", order.TotalAmount))

	t.sess.Reset()
	t.reply.Message = checkoutReply(order, t.identity.Name, lines)
	t.reply.Order = order
	t.placed = orderPlacedEvent(order, req, t.sess.ID)
	return nil
}

// claimFence reports whether a fence key was taken. An unreachable fence
// does not block checkout; the session lock and idempotency key still hold.
func (s *ChatService) claimFence(ctx context.Context, key string) (bool, error) {
	if s.fence == nil {
		return false, nil
	}

	ok, err := s.fence.Claim(ctx, key, s.cfg.FenceTTL)
	if err != nil {
		s.logger.Warn("Checkout fence unavailable", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, ErrConcurrencyConflict
	}
	return true, nil
}

func (s *ChatService) releaseFence(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.fence.Release(ctx, key); err != nil {
		s.logger.Warn("Failed to release checkout fence", zap.String("key", key), zap.Error(err))
	}
}

// notify publishes the placed order in the background
func (s *ChatService) notify(event *models.OrderPlacedEvent) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
		defer cancel()

		if err := s.notifier.PublishOrderPlaced(ctx, event); err != nil {
			util.NotificationsFailedTotal.Inc()
			s.logger.Error("Failed to publish OrderPlaced event",
				zap.Int64("order_id", event.OrderID),
				zap.Error(err))
		}
	}()
}

func orderPlacedEvent(order *models.PersistedOrder, req *models.OrderRequest, sessionID string) *models.OrderPlacedEvent {
	items := make([]models.OrderItemData, 0, len(req.Lines))
	for _, line := range req.Lines {
		items = append(items, models.OrderItemData{
			MenuItemID: line.CatalogItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}

	return &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		QueueNumber: order.QueueNumber,
		UserID:      req.UserID,
		SessionID:   sessionID,
		TotalAmount: order.TotalAmount,
		Items:       items,
	}
}
