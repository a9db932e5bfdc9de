package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request id in requests and responses.
const Header = "X-Ray-ID"

// New returns a middleware that assigns every request a ray id. An id sent
// by the client is kept so traces can span services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
