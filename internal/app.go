// Package internal contains core application wiring.
package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"pulsemetrics/internal/analytics"
	"pulsemetrics/internal/config"
	"pulsemetrics/internal/database"
	"pulsemetrics/internal/events"
	"pulsemetrics/internal/http"
	"pulsemetrics/internal/jobs"
	"pulsemetrics/internal/pkg/async"
	"pulsemetrics/internal/pkg/geoip"
	"pulsemetrics/internal/projects"
)

// Application bundles the long-lived components of the service.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.DBManager

	server    *http.Server
	geo       *geoip.Resolver
	scheduler *jobs.Scheduler
}

// NewApp creates a new application instance with default settings.
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig wires the database, query service and HTTP surface
// from the provided config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db := dbManager.GetConnection()

	geo := geoip.NewResolver(cfg.GeoDBPath, logger)

	repo := projects.NewRepo(db)
	store := analytics.NewStore(db)
	service := analytics.NewService(store, repo, repo, async.NewPool(cfg.QueryWorkers), logger, cfg.Location())

	handlers := http.Handlers{
		Analytics: http.NewAnalyticsHandler(service, logger),
		Collect:   http.NewCollectHandler(events.NewRecorder(db, logger), geo, cfg, logger),
		Health:    http.NewHealthHandler(),
		Repo:      repo,
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DBManager: dbManager,
		server:    http.NewServer(cfg, logger, handlers),
		geo:       geo,
		scheduler: jobs.NewScheduler(db, logger, cfg),
	}, nil
}

// StartAsync begins serving HTTP traffic without blocking the caller.
// Listen errors surface through the logger since the caller is usually
// parked on a signal channel by then.
func (a *Application) StartAsync() error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("starting background jobs: %w", err)
	}

	addr := fmt.Sprintf(":%s", a.Config.GetPort())
	a.Logger.Info("Starting HTTP server", slog.String("addr", addr))

	go func() {
		if err := a.server.Listen(addr); err != nil {
			a.Logger.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// Shutdown stops the HTTP server and releases shared resources.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	a.scheduler.Stop()
	a.geo.Close()
	if err := a.DBManager.CheckpointWAL("TRUNCATE"); err != nil {
		a.Logger.Warn("Failed to checkpoint WAL during shutdown", slog.Any("error", err))
	}
	return nil
}
