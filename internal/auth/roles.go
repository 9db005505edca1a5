package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Role grants access to API operations.
type Role string

const (
	// RoleViewer reads runs and audit entries and categorizes text.
	RoleViewer Role = "viewer"
	// RoleOperator can additionally repair batches and start runs.
	RoleOperator Role = "operator"
)

var roleRank = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Allows reports whether r includes the permissions of required.
func (r Role) Allows(required Role) bool {
	return r.Valid() && roleRank[r] >= roleRank[required]
}

// RequireRole ensures the caller holds at least the given role.
func RequireRole(required Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !principal.Role.Allows(required) {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
