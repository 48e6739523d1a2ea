package auth

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Scope limits what an operator token may do.
type Scope string

const (
	// ScopeRead allows reading the migration ledger.
	ScopeRead Scope = "migrations:read"
	// ScopeRun allows starting migrations.
	ScopeRun Scope = "migrations:run"
)

// AllScopes lists every known scope.
func AllScopes() []Scope {
	return []Scope{ScopeRead, ScopeRun}
}

// ParseScope validates a scope name.
func ParseScope(value string) (Scope, error) {
	for _, s := range AllScopes() {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown scope %q", value)
}

// RequireScope ensures the operator token carries scope.
func RequireScope(scope Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.Has(scope) {
			return fiber.NewError(http.StatusForbidden, "insufficient scope")
		}
		return c.Next()
	}
}
