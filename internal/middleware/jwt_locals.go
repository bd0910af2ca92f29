package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

func claimsFrom(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals("user").(*utils.Claims)
	return claims, ok && claims != nil
}

// AttachJWTLocals exposes the verified caller as Locals "userId", "role" and
// "principal".
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims.Role = strings.ToLower(strings.TrimSpace(claims.Role))
		principal, err := claims.Principal()
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", principal.UserID.String())
		c.Locals("role", string(principal.Role))
		c.Locals("principal", principal)

		return c.Next()
	}
}

// CurrentPrincipal returns the caller set by AttachJWTLocals.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals("principal").(models.Principal)
	return p, ok
}
