package middleware

import (
	"github.com/gofiber/fiber/v2"

	"janmitra/internal/domain"
)

// RequireRole admits principals holding any of roles. It must run after
// Authenticate.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		if principal == nil {
			return domain.ErrCredentialRequired
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}
		return domain.ErrInsufficientPermissions.WithDetails(map[string]any{
			"requiredRoles": roles,
			"role":          principal.Role,
		})
	}
}

func IsOfficial(c *fiber.Ctx) bool {
	p := GetPrincipal(c)
	return p != nil && p.Role.IsOfficial()
}
