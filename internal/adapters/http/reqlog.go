package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/territorymap/internal/pkg/logging"
)

// RequestIDLogMiddleware copies the Fiber request ID into the user context
// so that slog.*Context calls downstream are tagged with it.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ridStr, ok := c.Locals("requestid").(string)
		if !ok || ridStr == "" {
			return c.Next()
		}
		c.SetUserContext(logging.WithRequestID(c.UserContext(), ridStr))
		return c.Next()
	}
}

// withSession tags the user context with the :id route param before h runs.
func withSession(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Params("id"); id != "" {
			c.SetUserContext(logging.WithSessionID(c.UserContext(), id))
		}
		return h(c)
	}
}
