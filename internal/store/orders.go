package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chat-order-service/internal/models"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when no order has the requested number
var ErrOrderNotFound = errors.New("order not found")

const orderColumns = `id, order_number, queue_number, user_id, customer_name, total_amount,
	status, payment_method, payment_status, idempotency_key, created_at, updated_at`

// queue numbers cycle through Q-1000..Q-9999
const (
	queueBase = 1000
	queueSpan = 9000
)

// CreateOrder persists a checked out cart as an order with its items in one
// transaction. A request whose idempotency key was already persisted returns
// the existing order.
func (s *Store) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.PersistedOrder, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return persisted(existing), nil
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.GetContext(ctx, &seq, "SELECT nextval('order_queue_seq')"); err != nil {
		return nil, fmt.Errorf("failed to allocate queue number: %w", err)
	}

	order := &models.Order{
		OrderNumber:    s.orderNumber(),
		QueueNumber:    queueNumber(seq),
		UserID:         req.UserID,
		CustomerName:   req.CustomerName,
		TotalAmount:    req.TotalAmount,
		Status:         models.OrderStatusPending,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentStatus:  models.PaymentStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (order_number, queue_number, user_id, customer_name, total_amount,
			status, payment_method, payment_status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		order.OrderNumber, order.QueueNumber, order.UserID, order.CustomerName, order.TotalAmount,
		order.Status, order.PaymentMethod, order.PaymentStatus, order.IdempotencyKey,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range req.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			order.ID, line.CatalogItemID, line.Name, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item %d: %w", line.CatalogItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return persisted(order), nil
}

// GetOrderByIdempotencyKey returns the order persisted under key, or nil
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE idempotency_key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return &order, nil
}

// GetOrderByNumber returns the order with the given order number
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE order_number = $1", orderNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT id, order_id, menu_item_id, name, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	return items, err
}

func (s *Store) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func queueNumber(seq int64) string {
	if seq < 1 {
		seq = 1
	}
	return fmt.Sprintf("Q-%d", queueBase+(seq-1)%queueSpan)
}

func persisted(order *models.Order) *models.PersistedOrder {
	return &models.PersistedOrder{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		QueueNumber: order.QueueNumber,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}
}
