package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

// ParseScopes splits the OAuth2 space-delimited scope form field.
func ParseScopes(raw string) []string {
	return strings.Fields(raw)
}

// GrantScopes keeps the requested scopes the account is allowed, in request
// order and without duplicates.
func GrantScopes(requested, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		allowedSet[s] = struct{}{}
	}
	granted := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, s := range requested {
		if _, ok := allowedSet[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		granted = append(granted, s)
	}
	return granted
}

// MissingScopes returns the required scopes absent from granted.
func MissingScopes(required, granted []string) []string {
	grantedSet := make(map[string]struct{}, len(granted))
	for _, s := range granted {
		grantedSet[s] = struct{}{}
	}
	var missing []string
	for _, s := range required {
		if _, ok := grantedSet[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Challenge builds the WWW-Authenticate value for a set of required scopes.
func Challenge(required []string) string {
	if len(required) == 0 {
		return "Bearer"
	}
	return `Bearer scope="` + strings.Join(required, " ") + `"`
}

// RequireActive rejects principals whose account is disabled. It must run
// after Gate.Require.
func RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewInvalidToken(Challenge(nil))
		}
		if !principal.Account.Active() {
			return apperrors.NewInactiveAccount()
		}
		return c.Next()
	}
}
