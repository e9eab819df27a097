package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/tutorial-service/internal/dbx"
)

// Store groups the directory repositories bound to one database handle.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	// WithTx runs fn against a Store bound to a single transaction. Calls on a
	// Store that is already transactional run fn in place.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db      dbx.DBTX
	begin   dbx.TxBeginner
	dialect dbx.Dialect
}

// NewSQLStore binds repositories to a connection or pool handle.
func NewSQLStore(db interface {
	dbx.DBTX
	dbx.TxBeginner
}, dialect dbx.Dialect) Store {
	return &sqlStore{db: db, begin: db, dialect: dialect}
}

func (s *sqlStore) Users() UserRepository {
	return NewUserRepository(s.db, s.dialect)
}

func (s *sqlStore) Items() ItemRepository {
	return NewItemRepository(s.db, s.dialect)
}

func (s *sqlStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.begin == nil {
		return fn(s)
	}
	return dbx.WithTx(ctx, s.begin, nil, func(_ context.Context, tx *sql.Tx) error {
		return fn(&sqlStore{db: tx, dialect: s.dialect})
	})
}
