package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-portal/internal/domain"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// RequireRoles gates a route to an allow-list of roles. It must run
// after the authentication middleware: a 403 from here always means a
// known identity lacking privilege, never an anonymous caller.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[identity.Role]; !exists {
			return apperrors.NewForbidden("Insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAuthenticated admits any authenticated principal.
func RequireAuthenticated() fiber.Handler {
	return RequireRoles()
}
