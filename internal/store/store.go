package store

import (
	"context"
	"fmt"
	"time"

	"chat-order-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the Postgres backed catalog and order store
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore connects to Postgres and verifies the connection
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an existing connection
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const menuItemColumns = "id, name, category, COALESCE(description, '') AS description, price, is_available, created_at"

// ListAvailableItems returns the orderable menu items
func (s *Store) ListAvailableItems(ctx context.Context) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE is_available = TRUE ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// GetMenuItems returns every menu item, available or not
func (s *Store) GetMenuItems(ctx context.Context) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	err := s.db.SelectContext(ctx, &items, "SELECT "+menuItemColumns+" FROM menu_items ORDER BY id")
	return items, err
}
