package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hiring-workflow/internal/domain"
	apperrors "github.com/spec-kit/hiring-workflow/pkg/util/errorutil"
)

// RequireActor ensures a caller is authenticated.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireGlobalRole ensures the caller registered with one of the allowed global roles.
func RequireGlobalRole(allowed ...domain.GlobalRole) fiber.Handler {
	allowedSet := make(map[domain.GlobalRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[actor.GlobalRole]; !exists {
			return apperrors.NewForbidden("global role " + string(actor.GlobalRole) + " may not perform this action")
		}
		return c.Next()
	}
}
