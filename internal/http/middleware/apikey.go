package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pulsemetrics/internal/projects"
)

// ProjectUUIDKey is the Locals key carrying the project authenticated by an
// API key.
const ProjectUUIDKey = "project_uuid"

// APIKeyFinder resolves a public API key to an active key record.
type APIKeyFinder interface {
	FindAPIKey(ctx context.Context, publicKey string) (*projects.APIKey, error)
}

// RequireAPIKey guards the ingestion endpoint. Expects an X-Public-Key
// header matching an active key for the project in the URL.
func RequireAPIKey(keys APIKeyFinder, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		publicKey := c.Get("X-Public-Key")
		if publicKey == "" {
			return unauthorized(c, "Missing X-Public-Key header")
		}

		key, err := keys.FindAPIKey(c.UserContext(), publicKey)
		if err != nil {
			logger.Debug("api key lookup failed", slog.Any("error", err))
			return unauthorized(c, "Invalid API key")
		}

		// The key must belong to the project being written to.
		if projectID := c.Params("id"); projectID != "" && projectID != key.ProjectUUID {
			return unauthorized(c, "API key does not match project")
		}

		c.Locals(ProjectUUIDKey, key.ProjectUUID)
		return c.Next()
	}
}
