package models

import "time"

// CatalogItem represents an orderable menu item
type CatalogItem struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description,omitempty"`
	Price       int64     `db:"price" json:"price"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// Menu categories
const (
	CategoryMain     = "main"
	CategoryBeverage = "beverage"
	CategorySnack    = "snack"
	CategoryDessert  = "dessert"
)

// MaxLineQuantity caps the quantity of one cart line, so a line subtotal and
// the cart total always fit in int64
const MaxLineQuantity = 99

// CartLine is one catalog item accumulated in a chat session
type CartLine struct {
	CatalogItemID int64  `json:"catalog_item_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
}

// Subtotal returns quantity times unit price
func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// SessionState is the conversation state of a chat session
type SessionState string

// Session states
const (
	SessionStateInitial    SessionState = "initial"
	SessionStateConfirming SessionState = "confirming"
)

// Session holds the conversation state for one session id
type Session struct {
	ID          string       `json:"session_id"`
	State       SessionState `json:"state"`
	Cart        []CartLine   `json:"cart"`
	LastMessage string       `json:"last_message,omitempty"`
	Version     uint64       `json:"version"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewSession returns an empty session in the initial state
func NewSession(id string) Session {
	return Session{
		ID:    id,
		State: SessionStateInitial,
		Cart:  []CartLine{},
	}
}

// Clone returns a deep copy so callers can mutate the cart freely
func (s Session) Clone() Session {
	c := s
	c.Cart = make([]CartLine, len(s.Cart))
	copy(c.Cart, s.Cart)
	return c
}

// Total sums quantity times unit price over the cart
func (s Session) Total() int64 {
	var total int64
	for _, line := range s.Cart {
		total += line.Subtotal()
	}
	return total
}

// SameOrder reports whether both sessions hold the same state and cart
func (s Session) SameOrder(o Session) bool {
	if s.State != o.State || len(s.Cart) != len(o.Cart) {
		return false
	}
	for i := range s.Cart {
		if s.Cart[i] != o.Cart[i] {
			return false
		}
	}
	return true
}

// Reset clears the cart and returns the session to the initial state
func (s *Session) Reset() {
	s.State = SessionStateInitial
	s.Cart = []CartLine{}
	s.LastMessage = ""
}

// Quantity returns how many of the catalog item the cart already holds
func (s Session) Quantity(catalogItemID int64) int {
	for _, line := range s.Cart {
		if line.CatalogItemID == catalogItemID {
			return line.Quantity
		}
	}
	return 0
}

// AddLine merges a line into the cart by catalog item id.
// An existing line keeps its name and unit price; only the quantity grows,
// saturating at MaxLineQuantity.
func (s *Session) AddLine(line CartLine) CartLine {
	for i := range s.Cart {
		if s.Cart[i].CatalogItemID == line.CatalogItemID {
			s.Cart[i].Quantity = capQuantity(s.Cart[i].Quantity + line.Quantity)
			return s.Cart[i]
		}
	}
	line.Quantity = capQuantity(line.Quantity)
	s.Cart = append(s.Cart, line)
	return line
}

func capQuantity(q int) int {
	if q > MaxLineQuantity || q < 0 {
		return MaxLineQuantity
	}
	return q
}

// Order represents a persisted canteen order
type Order struct {
	ID             int64     `db:"id" json:"id"`
	OrderNumber    string    `db:"order_number" json:"order_number"`
	QueueNumber    string    `db:"queue_number" json:"queue_number"`
	UserID         string    `db:"user_id" json:"user_id"`
	CustomerName   string    `db:"customer_name" json:"customer_name,omitempty"`
	TotalAmount    int64     `db:"total_amount" json:"total_amount"`
	Status         string    `db:"status" json:"status"`
	PaymentMethod  string    `db:"payment_method" json:"payment_method"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	IdempotencyKey string    `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem represents a line of a persisted order
type OrderItem struct {
	ID         int64  `db:"id" json:"id"`
	OrderID    int64  `db:"order_id" json:"order_id"`
	MenuItemID int64  `db:"menu_item_id" json:"menu_item_id"`
	Name       string `db:"name" json:"name"`
	Quantity   int    `db:"quantity" json:"quantity"`
	UnitPrice  int64  `db:"unit_price" json:"unit_price"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodCash    = "cash"
	PaymentMethodGCash   = "gcash"
	PaymentMethodPayMaya = "paymaya"
)

// Payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// OrderRequest is what checkout hands to order persistence
type OrderRequest struct {
	UserID         string     `json:"user_id"`
	CustomerName   string     `json:"customer_name,omitempty"`
	Lines          []CartLine `json:"lines"`
	TotalAmount    int64      `json:"total_amount"`
	IdempotencyKey string     `json:"idempotency_key"`
}

// PersistedOrder is the outcome of a successful checkout
type PersistedOrder struct {
	OrderID     int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	QueueNumber string `json:"queue_number,omitempty"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
}
