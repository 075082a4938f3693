package rayid

import (
	"strings"

	"grocer/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray id on requests and responses.
const Header = "X-Ray-ID"

// LocalKey is the fiber locals key holding the ray id.
const LocalKey = logger.RayIDKey

// New returns a middleware that tags every request with a ray id. An incoming
// X-Ray-ID header is kept so traces can span services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Header values point into a reused buffer.
		id := strings.Clone(c.Get(Header))
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
