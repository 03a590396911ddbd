package middleware

import (
	"github.com/gofiber/fiber/v2"

	"credilink_backend/internals/configs"
)

// AdminOnly gates admin routes. The admin flag is derived from the token
// email against ADMIN_EMAILS, never read from the user record.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !configs.IsAdminEmail(UserEmail(c)) {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
