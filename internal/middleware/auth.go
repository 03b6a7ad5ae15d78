package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/service/auth"
)

const (
	PrincipalContextKey = "principal"
	RoleContextKey      = "role"
)

// Authenticate rejects requests without a valid bearer token for an active
// principal. A principal already attached by OptionalAuth is reused.
func Authenticate(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetPrincipal(c) != nil {
			return c.Next()
		}

		token := bearerToken(c)
		if token == "" {
			return domain.ErrCredentialRequired
		}

		principal, err := authService.ResolvePrincipal(c.UserContext(), token)
		if err != nil {
			return err
		}

		setPrincipal(c, principal)
		return c.Next()
	}
}

// OptionalAuth attaches the principal when a usable token is present and
// otherwise lets the request through as a guest.
func OptionalAuth(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if principal, err := authService.ResolvePrincipal(c.UserContext(), token); err == nil {
				setPrincipal(c, principal)
			}
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func setPrincipal(c *fiber.Ctx, p *domain.Principal) {
	c.Locals(PrincipalContextKey, p)
	c.Locals(RoleContextKey, p.Role)
}

func GetPrincipal(c *fiber.Ctx) *domain.Principal {
	p, ok := c.Locals(PrincipalContextKey).(*domain.Principal)
	if !ok {
		return nil
	}
	return p
}

func GetPrincipalID(c *fiber.Ctx) uuid.UUID {
	if p := GetPrincipal(c); p != nil {
		return p.ID
	}
	return uuid.Nil
}
