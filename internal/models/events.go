package models

import "time"

// Event types
const (
	EventTypeOrderPlaced     = "ORDER_PLACED"
	EventTypeMenuItemUpdated = "MENU_ITEM_UPDATED"
	EventTypeMenuItemRemoved = "MENU_ITEM_REMOVED"
	EventTypeMenuReloaded    = "MENU_RELOADED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a chat checkout persists an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	QueueNumber string          `json:"queue_number,omitempty"`
	UserID      string          `json:"user_id"`
	SessionID   string          `json:"session_id"`
	TotalAmount int64           `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
}

// MenuEvent published by the catalog store when menu items change
type MenuEvent struct {
	BaseEvent
	MenuItemID int64 `json:"menu_item_id,omitempty"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}
