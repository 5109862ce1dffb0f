// Package middleware holds the auth guards for the HTTP surface.
package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pulsemetrics/internal/projects"
)

// UserUUIDKey is the Locals key carrying the authenticated requester UUID.
const UserUUIDKey = "user_uuid"

// SessionFinder resolves a session token to an unexpired session.
type SessionFinder interface {
	FindSession(ctx context.Context, token string, now time.Time) (*projects.Session, error)
}

// RequireSession guards the read API. Expects: Authorization: Bearer <token>.
// On success the requester UUID lands in Locals under UserUUIDKey.
func RequireSession(sessions SessionFinder, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Missing Authorization header")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return unauthorized(c, "Session token is empty")
		}

		session, err := sessions.FindSession(c.UserContext(), token, time.Now().UTC())
		if err != nil {
			logger.Debug("session lookup failed", slog.Any("error", err))
			return unauthorized(c, "Invalid or expired session")
		}

		c.Locals(UserUUIDKey, session.UserUUID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
