package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spec-kit/tutorial-service/internal/dbx"
	"github.com/spec-kit/tutorial-service/internal/domain"
)

// UserRepository defines persistence access for directory users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
}

type userRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewUserRepository returns a database/sql implementation.
func NewUserRepository(db dbx.DBTX, dialect dbx.Dialect) UserRepository {
	return &userRepository{db: db, dialect: dialect}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, hashed_password, is_active)
        VALUES (?, ?, ?)
        RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		user.Email,
		user.HashedPassword,
		user.IsActive,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, email, hashed_password, is_active
        FROM users WHERE id = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, hashed_password, is_active
        FROM users WHERE email = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), email))
}

func (r *userRepository) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	const query = `
        SELECT id, email, hashed_password, is_active
        FROM users ORDER BY id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.HashedPassword, &user.IsActive); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &user.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
