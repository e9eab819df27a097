package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spec-kit/tutorial-service/internal/dbx"
	"github.com/spec-kit/tutorial-service/internal/domain"
)

// ItemRepository defines persistence access for items owned by users.
type ItemRepository interface {
	// Create inserts the item as given; OwnerID is not checked against users.
	Create(ctx context.Context, item *domain.Item) error
	List(ctx context.Context, skip, limit int) ([]domain.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error)
}

type itemRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewItemRepository returns a database/sql implementation.
func NewItemRepository(db dbx.DBTX, dialect dbx.Dialect) ItemRepository {
	return &itemRepository{db: db, dialect: dialect}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (title, description, owner_id)
        VALUES (?, ?, ?)
        RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		item.Title,
		item.Description,
		item.OwnerID,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *itemRepository) List(ctx context.Context, skip, limit int) ([]domain.Item, error) {
	const query = `
        SELECT id, title, description, owner_id
        FROM items ORDER BY id LIMIT ? OFFSET ?`

	return r.query(ctx, query, limit, skip)
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	const query = `
        SELECT id, title, description, owner_id
        FROM items WHERE owner_id = ? ORDER BY id`

	return r.query(ctx, query, ownerID)
}

func (r *itemRepository) query(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var (
			item        domain.Item
			description sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &description, &item.OwnerID); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if description.Valid {
			item.Description = &description.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}
