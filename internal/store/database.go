package store

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"vaspx-assistant/internal/db"
)

// DatabaseStore persists trained categories in PostgreSQL.
type DatabaseStore struct {
	db *db.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// SaveCategory saves or replaces a category. The position column is only
// assigned on first insert so overwrites keep their registration slot.
func (ds *DatabaseStore) SaveCategory(ctx context.Context, c Category) error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}

	query := `
		INSERT INTO intent_categories (name, patterns, responses, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name)
		DO UPDATE SET
			patterns = EXCLUDED.patterns,
			responses = EXCLUDED.responses,
			updated_at = NOW()
	`

	_, err := ds.db.ExecContext(ctx, query, c.Name, pq.Array(c.Patterns), pq.Array(c.Responses))
	if err != nil {
		return fmt.Errorf("failed to save intent category: %w", err)
	}

	return nil
}

// LoadCategories returns every persisted category in registration order.
func (ds *DatabaseStore) LoadCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT name, patterns, responses
		FROM intent_categories
		ORDER BY position ASC
	`

	rows, err := ds.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load intent categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, pq.Array(&c.Patterns), pq.Array(&c.Responses)); err != nil {
			return nil, fmt.Errorf("failed to scan intent category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intent categories: %w", err)
	}

	return out, nil
}
