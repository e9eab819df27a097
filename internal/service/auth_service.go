package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/events"
	"github.com/spec-kit/tutorial-service/internal/repository"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

// AuthService issues tokens for the fixed account table.
type AuthService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(accounts repository.AccountRepository, tokenMgr *auth.TokenManager, dispatcher events.Dispatcher, bcryptCost int, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokenMgr:   tokenMgr,
		dispatcher: dispatcher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login checks the password and issues a token carrying the requested scopes
// the account is allowed. Unknown usernames and wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string, requestedScopes []string) (domain.Token, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Token{}, apperrors.NewAuthenticationFailed()
		}
		return domain.Token{}, err
	}

	if err := auth.ComparePassword(account.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("password check failed", zap.String("username", username), zap.Error(err))
		}
		return domain.Token{}, apperrors.NewAuthenticationFailed()
	}

	return s.tokenMgr.GenerateToken(account.Username, auth.GrantScopes(requestedScopes, account.Scopes))
}

// SaveUser hashes the password of a submitted user and announces it. Nothing is
// stored; the account is only echoed back.
func (s *AuthService) SaveUser(ctx context.Context, in domain.Account, password string) (*domain.Account, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	in.HashedPassword = hash

	if s.dispatcher != nil {
		event := events.New(events.EventUserSaved, in.Username, events.UserSavedPayload{Username: in.Username, Email: in.Email})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("user_saved handlers failed", zap.Error(err))
		}
	}
	return &in, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
