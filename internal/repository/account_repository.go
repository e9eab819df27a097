package repository

import (
	"context"

	"github.com/spec-kit/tutorial-service/internal/domain"
)

// AccountRepository looks up entries of the fixed credential table.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// memoryAccountRepository is read-only after construction, so it needs no locking.
type memoryAccountRepository struct {
	accounts map[string]domain.Account
}

// NewMemoryAccountRepository returns an in-memory table keyed by username.
func NewMemoryAccountRepository(accounts ...domain.Account) AccountRepository {
	byName := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		a.Scopes = append([]string(nil), a.Scopes...)
		byName[a.Username] = a
	}
	return &memoryAccountRepository{accounts: byName}
}

func (r *memoryAccountRepository) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	a.Scopes = append([]string(nil), a.Scopes...)
	return &a, nil
}

// SeedAccounts is the tutorial's demo table. Hashes are bcrypt; john_doe's
// password is "secret" and alice is disabled.
func SeedAccounts() []domain.Account {
	return []domain.Account{
		{
			Username:       "john_doe",
			FullName:       "John Doe",
			Email:          "johndoe@example.com",
			HashedPassword: "$2b$12$EixZaYVK1fsbw1ZfbX3OXePaWxn96p36WQoeG6Lruj3vjPGga31lW",
			Scopes:         []string{domain.ScopeMe, domain.ScopeItems},
		},
		{
			Username:       "alice",
			FullName:       "Alice Chains",
			Email:          "alicechains@example.com",
			HashedPassword: "$2b$12$gSvqqUPvlXP2tfVFaWK1Be7DlH.PKZbv5H8KnzzVgXXbVxpva.pFm",
			Disabled:       true,
			Scopes:         []string{domain.ScopeMe},
		},
	}
}
