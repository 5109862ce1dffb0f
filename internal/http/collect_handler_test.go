package http_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsemetrics/internal/events"
	"pulsemetrics/internal/testsupport"
	"pulsemetrics/internal/visitors"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestCollectRequiresAPIKey(t *testing.T) {
	app, db := setupTestApp(t)
	project := testsupport.CreateTestProject(t, db, "Acme", uuid.NewString())

	body, _ := json.Marshal(map[string]any{"pathname": "/", "event_type": "pageview"})

	t.Run("missing key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", "pk_nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("key for another project", func(t *testing.T) {
		other := testsupport.CreateTestProject(t, db, "Other", uuid.NewString())
		otherKey := testsupport.CreateTestAPIKey(t, db, other.UUID)

		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", otherKey.PublicKey)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked key", func(t *testing.T) {
		key := testsupport.CreateTestAPIKey(t, db, project.UUID)
		require.NoError(t, db.Model(&key).Update("revoked", true).Error)

		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", key.PublicKey)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestCollectValidation(t *testing.T) {
	app, db := setupTestApp(t)
	project := testsupport.CreateTestProject(t, db, "Acme", uuid.NewString())
	key := testsupport.CreateTestAPIKey(t, db, project.UUID)

	doPost := func(t *testing.T, payload map[string]any) int {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", key.PublicKey)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	t.Run("missing pathname", func(t *testing.T) {
		assert.Equal(t, fiber.StatusBadRequest, doPost(t, map[string]any{"event_type": "pageview"}))
	})

	t.Run("missing event type", func(t *testing.T) {
		assert.Equal(t, fiber.StatusBadRequest, doPost(t, map[string]any{"pathname": "/"}))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader([]byte("{not json")))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", key.PublicKey)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestCollectRecordsEvent(t *testing.T) {
	app, db := setupTestApp(t)
	project := testsupport.CreateTestProject(t, db, "Acme", uuid.NewString())
	key := testsupport.CreateTestAPIKey(t, db, project.UUID)

	payload := map[string]any{
		"pathname":   "/pricing",
		"event_type": "pageview",
		"referrer":   "https://news.ycombinator.com/",
		"utm_source": "newsletter",
		"hostname":   "acme.example",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Public-Key", key.PublicKey)
	req.Header.Set(fiber.HeaderUserAgent, chromeUA)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := readEnvelope(t, resp.Body)
	assert.True(t, env.Success)
	assert.Equal(t, "Event logged", env.Message)

	var stored events.AnalyticsEvent
	require.NoError(t, db.Where("project_id = ?", project.UUID).First(&stored).Error)
	assert.Equal(t, "/pricing", stored.Pathname)
	assert.Equal(t, events.EventTypePageView, stored.EventType)
	assert.Equal(t, "newsletter", deref(stored.UTMSource))
	assert.Equal(t, "acme.example", deref(stored.Hostname))

	// Browser details come from the User-Agent header, not the payload.
	assert.Equal(t, "Chrome", deref(stored.BrowserName))
	assert.Equal(t, "macOS", deref(stored.OSName))
	assert.Equal(t, "desktop", deref(stored.DeviceType))

	require.NotNil(t, stored.VisitorID)
	assert.Len(t, deref(stored.VisitorID), 64)

	// A session cookie is minted on the first hit.
	cookies := resp.Header.Values(fiber.HeaderSetCookie)
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], "pulsemetrics_sid=")
}

func TestCollectVisitorIDStableWithinDay(t *testing.T) {
	app, db := setupTestApp(t)
	project := testsupport.CreateTestProject(t, db, "Acme", uuid.NewString())
	key := testsupport.CreateTestAPIKey(t, db, project.UUID)

	send := func(t *testing.T) {
		body, err := json.Marshal(map[string]any{"pathname": "/", "event_type": "pageview"})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/v1/collect/"+project.UUID, bytes.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("X-Public-Key", key.PublicKey)
		req.Header.Set(fiber.HeaderUserAgent, chromeUA)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	send(t)
	send(t)

	var stored []events.AnalyticsEvent
	require.NoError(t, db.Where("project_id = ?", project.UUID).Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, deref(stored[0].VisitorID), deref(stored[1].VisitorID))

	// Requests without a resolvable public address hash as loopback.
	expected := visitors.BuildAnonymousID("127.0.0.1", chromeUA, "test-private-key", time.Now().UTC())
	assert.Equal(t, expected, deref(stored[0].VisitorID))
}
