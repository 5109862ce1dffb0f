package http

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pulsemetrics/internal/config"
	"pulsemetrics/internal/events"
	"pulsemetrics/internal/http/middleware"
	"pulsemetrics/internal/pkg/geoip"
	"pulsemetrics/internal/pkg/useragent"
	"pulsemetrics/internal/visitors"
)

// CollectEventParams is the beacon payload. Browser, OS and device details
// are derived server-side from the User-Agent header, never trusted from
// the payload.
type CollectEventParams struct {
	Pathname string  `json:"pathname"`
	Referrer *string `json:"referrer,omitempty"`
	Hostname *string `json:"hostname,omitempty"`

	UTMSource   *string `json:"utm_source,omitempty"`
	UTMMedium   *string `json:"utm_medium,omitempty"`
	UTMCampaign *string `json:"utm_campaign,omitempty"`
	UTMTerm     *string `json:"utm_term,omitempty"`
	UTMContent  *string `json:"utm_content,omitempty"`

	EventType string         `json:"event_type"`
	EventName *string        `json:"event_name,omitempty"`
	EventData map[string]any `json:"event_data,omitempty"`

	Duration *int `json:"duration,omitempty"`

	Country *string `json:"country,omitempty"`
	City    *string `json:"city,omitempty"`
}

// CollectHandler ingests beacon events for a project.
type CollectHandler struct {
	recorder *events.Recorder
	geo      *geoip.Resolver
	cfg      *config.Config
	logger   *slog.Logger
}

func NewCollectHandler(recorder *events.Recorder, geo *geoip.Resolver, cfg *config.Config, logger *slog.Logger) *CollectHandler {
	return &CollectHandler{recorder: recorder, geo: geo, cfg: cfg, logger: logger}
}

// Post handles POST /api/v1/collect/:id. The API key middleware has already
// verified the key and stored the project UUID in Locals.
func (h *CollectHandler) Post(c *fiber.Ctx) error {
	projectID, _ := c.Locals(middleware.ProjectUUIDKey).(string)
	if projectID == "" {
		return respondError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var params CollectEventParams
	if err := c.BodyParser(&params); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if params.Pathname == "" {
		return respondError(c, fiber.StatusBadRequest, "Validation failed: pathname is required")
	}
	if params.EventType == "" {
		return respondError(c, fiber.StatusBadRequest, "Validation failed: event_type is required")
	}

	ip := clientIP(c)
	userAgent := c.Get(fiber.HeaderUserAgent)
	eventTime := time.Now().UTC()

	sessionID := h.getOrCreateSessionID(c)
	visitorID := visitors.BuildAnonymousID(ip, userAgent, h.cfg.PrivateKey, eventTime)

	country, city := params.Country, params.City
	if country == nil && city == nil {
		country, city = h.geo.Lookup(ip)
	}

	event := &events.AnalyticsEvent{
		ProjectID:   projectID,
		SessionID:   sessionID,
		VisitorID:   &visitorID,
		Timestamp:   eventTime,
		Pathname:    params.Pathname,
		Referrer:    params.Referrer,
		Hostname:    params.Hostname,
		UTMSource:   params.UTMSource,
		UTMMedium:   params.UTMMedium,
		UTMCampaign: params.UTMCampaign,
		UTMTerm:     params.UTMTerm,
		UTMContent:  params.UTMContent,
		EventType:   params.EventType,
		EventName:   params.EventName,
		EventData:   encodeEventData(params.EventData),
		Country:     country,
		City:        city,
		UserAgent:   events.NullableString(userAgent),
		Duration:    params.Duration,
	}

	details := useragent.Parse(userAgent)
	event.BrowserName = events.NullableString(details.BrowserName)
	event.BrowserVersion = events.NullableString(details.BrowserVersion)
	event.OSName = events.NullableString(details.OSName)
	event.OSVersion = events.NullableString(details.OSVersion)
	event.DeviceType = events.NullableString(details.DeviceType)

	if err := h.recorder.Record(c.UserContext(), event); err != nil {
		h.logger.Error("failed to record event",
			slog.String("project_id", projectID),
			slog.Any("error", err))
		return respondError(c, fiber.StatusInternalServerError, "Failed to log event")
	}

	return respondOK(c, "Event logged", nil)
}

// getOrCreateSessionID reads the visitor session cookie, minting a new one
// when absent or expired.
func (h *CollectHandler) getOrCreateSessionID(c *fiber.Ctx) string {
	cookieName := h.cfg.AppName + "_sid"

	if sid := c.Cookies(cookieName); sid != "" {
		return sid
	}

	sid := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    sid,
		Expires:  time.Now().Add(time.Duration(h.cfg.VisitorSessionMinutes) * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Secure:   true,
	})
	return sid
}

func encodeEventData(data map[string]any) *string {
	if len(data) == 0 {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	s := string(encoded)
	return &s
}
