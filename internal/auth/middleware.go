package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/repository"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account *domain.Account
	Scopes  []string
}

// Gate validates bearer tokens and loads principals.
type Gate struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
}

// NewGate constructs the authentication gate.
func NewGate(tokens *TokenManager, accounts repository.AccountRepository) *Gate {
	return &Gate{tokens: tokens, accounts: accounts}
}

// Require admits requests carrying a valid token that grants every scope listed.
// Any failing check rejects the request; there is no partial admission.
func (g *Gate) Require(scopes ...string) fiber.Handler {
	challenge := Challenge(scopes)

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperrors.NewInvalidToken(challenge)
		}

		claims, err := g.tokens.ParseToken(token)
		if err != nil {
			return apperrors.NewInvalidToken(challenge)
		}

		account, err := g.accounts.GetByUsername(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewInvalidToken(challenge)
			}
			return apperrors.MapError(err)
		}

		if missing := MissingScopes(scopes, claims.Scopes); len(missing) > 0 {
			return apperrors.NewInsufficientScope(challenge, missing)
		}

		c.Locals(principalKey, &Principal{Account: account, Scopes: claims.Scopes})
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
