package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pulsemetrics/internal/analytics"
	"pulsemetrics/internal/http/middleware"
)

// AnalyticsHandler serves the aggregated analytics document for a project.
type AnalyticsHandler struct {
	service *analytics.Service
	logger  *slog.Logger
}

func NewAnalyticsHandler(service *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// Get handles GET /api/v1/analytics/:id and /api/v1/analytics/:id/:eventName.
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	requesterID, _ := c.Locals(middleware.UserUUIDKey).(string)

	params := analytics.GetAnalyticsParams{
		ProjectID:   c.Params("id"),
		Filter:      c.Query("filter"),
		RequesterID: requesterID,
	}
	if eventName := c.Params("eventName"); eventName != "" {
		params.EventName = &eventName
	}

	result, err := h.service.GetAnalytics(c.UserContext(), params)
	if err != nil {
		return h.respondError(c, err)
	}

	return respondOK(c, "Analytics fetched successfully", result)
}

// respondError maps the service error taxonomy to HTTP statuses. Messages
// stay human-readable; the cause never leaves the server.
func (h *AnalyticsHandler) respondError(c *fiber.Ctx, err error) error {
	var reqErr *analytics.RequestError
	if !errors.As(err, &reqErr) {
		h.logger.Error("unexpected analytics error", slog.Any("error", err))
		return respondError(c, fiber.StatusInternalServerError, "Failed to fetch analytics")
	}

	status := fiber.StatusInternalServerError
	switch reqErr.Kind {
	case analytics.ErrInvalidProjectID, analytics.ErrInvalidFilter:
		status = fiber.StatusBadRequest
	case analytics.ErrForbidden:
		status = fiber.StatusForbidden
	case analytics.ErrNotFound:
		status = fiber.StatusNotFound
	case analytics.ErrStoreUnavailable:
		status = fiber.StatusInternalServerError
	}

	if status == fiber.StatusInternalServerError {
		h.logger.Error("analytics request failed",
			slog.String("project_id", c.Params("id")),
			slog.Any("error", err))
	}

	return respondError(c, status, reqErr.Message)
}
