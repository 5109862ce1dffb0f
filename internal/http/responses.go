// Package http exposes the analytics read API, the event collection
// endpoint and the health check over fiber.
package http

import (
	"github.com/gofiber/fiber/v2"
)

// envelope is the JSON shape every endpoint responds with.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respondOK(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(envelope{Success: true, Message: message, Data: data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Success: false, Message: message, Data: nil})
}
