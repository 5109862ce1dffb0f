package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"pulsemetrics/internal/config"
	"pulsemetrics/internal/http/middleware"
	"pulsemetrics/internal/projects"
)

// Server wraps the fiber application setup.
type Server struct {
	app    *fiber.App
	logger *slog.Logger
}

// Handlers bundles everything the route table needs.
type Handlers struct {
	Analytics *AnalyticsHandler
	Collect   *CollectHandler
	Health    *HealthHandler
	Repo      *projects.Repo
}

// NewServer configures routes and middleware.
func NewServer(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/_health", h.Health.Get)

	api := app.Group("/api/v1")

	analyticsGroup := api.Group("/analytics", middleware.RequireSession(h.Repo, logger))
	analyticsGroup.Get("/:id", h.Analytics.Get)
	analyticsGroup.Get("/:id/:eventName", h.Analytics.Get)

	api.Post("/collect/:id", middleware.RequireAPIKey(h.Repo, logger), h.Collect.Post)

	return &Server{app: app, logger: logger}
}

// App exposes the underlying fiber app; used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen runs the server on the provided addr.
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
