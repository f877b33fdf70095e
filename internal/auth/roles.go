package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sfqs/ticket-system/internal/domain"
	apperrors "github.com/sfqs/ticket-system/pkg/util/errorutil"
)

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !SessionFromContext(c).Authenticated {
			return apperrors.NewUnauthorized("session required")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		session := SessionFromContext(c)
		if !session.Authenticated {
			return apperrors.NewUnauthorized("session required")
		}
		if _, ok := allowedSet[session.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
