package http

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Get handles GET /_health.
func (h *HealthHandler) Get(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
