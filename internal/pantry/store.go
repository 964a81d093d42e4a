package pantry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Item is a single pantry ingredient owned by a user.
type Item struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   string    `json:"owner" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  string    `json:"quantity" db:"quantity"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PostgresStore persists pantry items.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and bootstraps the schema.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS app_pantry_items (
		id BIGSERIAL PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS app_pantry_items_owner ON app_pantry_items (owner_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create pantry items table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// ListByOwner retrieves the owner's pantry items, newest first.
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]*Item, error) {
	var items []*Item
	err := s.db.SelectContext(ctx, &items,
		"SELECT id, owner_id, name, quantity, image_url, created_at, updated_at FROM app_pantry_items WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pantry items: %w", err)
	}
	return items, nil
}

// Insert adds a pantry item and returns it with store-assigned fields.
func (s *PostgresStore) Insert(ctx context.Context, item *Item) (*Item, error) {
	inserted := *item
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO app_pantry_items (owner_id, name, quantity, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		item.OwnerID, item.Name, item.Quantity, item.ImageURL,
	).Scan(&inserted.ID, &inserted.CreatedAt, &inserted.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pantry item: %w", err)
	}
	return &inserted, nil
}

// UpdateQuantity changes an item's quantity, scoped to the owner.
func (s *PostgresStore) UpdateQuantity(ctx context.Context, ownerID string, id int64, quantity string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE app_pantry_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING id, owner_id, name, quantity, image_url, created_at, updated_at`,
		quantity, id, ownerID)

	var item Item
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Quantity, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update pantry item: %w", err)
	}
	return &item, nil
}

// Delete removes an item, scoped to the owner. Deleting a missing item
// is not an error.
func (s *PostgresStore) Delete(ctx context.Context, ownerID string, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM app_pantry_items WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete pantry item: %w", err)
	}
	return nil
}

// Names extracts the ingredient names from a set of items, in order.
func Names(items []*Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}
