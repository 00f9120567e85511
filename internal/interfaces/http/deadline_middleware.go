package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestDeadline acota c.UserContext() a timeout. Los casos de uso reciben ese contexto, así que
// una consulta bloqueada en el almacenamiento se cancela y responde 503 en vez de colgar la petición.
func RequestDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
