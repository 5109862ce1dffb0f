// Package testsupport provides shared database and seeding helpers for
// package-level tests.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pulsemetrics/internal/events"
	"pulsemetrics/internal/projects"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var (
	testDBCache   = make(map[string]*gorm.DB)
	testDBCacheMu sync.Mutex
)

// allModels returns all pulsemetrics models for migration
func allModels() []any {
	return []any{
		&events.AnalyticsEvent{},
		&projects.Project{},
		&projects.Member{},
		&projects.APIKey{},
		&projects.Session{},
	}
}

// SetupTestDB creates a test database with all pulsemetrics models migrated.
// Uses a named in-memory database with cache=shared so multiple connections
// within a test share the same database. Cached by root test name so calls
// from subtests reuse the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a test logger that only surfaces errors
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// Str returns a pointer to the given string. Seeding shorthand.
func Str(s string) *string {
	return &s
}

// CreateTestProject seeds a project with an owner membership row.
func CreateTestProject(t *testing.T, db *gorm.DB, name, ownerUUID string) projects.Project {
	t.Helper()

	project := projects.Project{
		UUID:      uuid.NewString(),
		Name:      name,
		Slug:      strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		URL:       fmt.Sprintf("https://%s.example.com", strings.ToLower(strings.ReplaceAll(name, " ", "-"))),
		OwnerUUID: ownerUUID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&project).Error)

	member := projects.Member{
		ProjectUUID: project.UUID,
		UserUUID:    ownerUUID,
		Role:        "owner",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&member).Error)

	return project
}

// CreateTestMember adds a user to a project's team.
func CreateTestMember(t *testing.T, db *gorm.DB, projectUUID, userUUID string) projects.Member {
	t.Helper()

	member := projects.Member{
		ProjectUUID: projectUUID,
		UserUUID:    userUUID,
		Role:        "member",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&member).Error)
	return member
}

// CreateTestAPIKey seeds an active API key for a project.
func CreateTestAPIKey(t *testing.T, db *gorm.DB, projectUUID string) projects.APIKey {
	t.Helper()

	key := projects.APIKey{
		ProjectUUID: projectUUID,
		PublicKey:   "pk_" + uuid.NewString(),
		SecretKey:   "sk_" + uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&key).Error)
	return key
}

// CreateTestSession seeds an unexpired login session for a user.
func CreateTestSession(t *testing.T, db *gorm.DB, userUUID string) projects.Session {
	t.Helper()

	session := projects.Session{
		Token:     "tok_" + uuid.NewString(),
		UserUUID:  userUUID,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

// EventOption mutates a seeded event before insertion.
type EventOption func(*events.AnalyticsEvent)

// WithVisitor sets the visitor ID.
func WithVisitor(visitorID string) EventOption {
	return func(e *events.AnalyticsEvent) { e.VisitorID = &visitorID }
}

// WithEventName marks the event as a named custom event.
func WithEventName(name string) EventOption {
	return func(e *events.AnalyticsEvent) {
		e.EventType = events.EventTypeCustom
		e.EventName = &name
	}
}

// WithDimensions sets the browser, OS and device columns.
func WithDimensions(browser, osName, device string) EventOption {
	return func(e *events.AnalyticsEvent) {
		e.BrowserName = &browser
		e.OSName = &osName
		e.DeviceType = &device
	}
}

// WithLocation sets the country and city columns.
func WithLocation(country, city string) EventOption {
	return func(e *events.AnalyticsEvent) {
		e.Country = &country
		e.City = &city
	}
}

// WithReferrer sets the referrer column.
func WithReferrer(referrer string) EventOption {
	return func(e *events.AnalyticsEvent) { e.Referrer = &referrer }
}

// WithUTMSource sets the utm_source column.
func WithUTMSource(source string) EventOption {
	return func(e *events.AnalyticsEvent) { e.UTMSource = &source }
}

// WithHostname sets the hostname column.
func WithHostname(hostname string) EventOption {
	return func(e *events.AnalyticsEvent) { e.Hostname = &hostname }
}

// CreateTestEvent seeds one page view event at the given timestamp. Options
// fill in dimension columns; anything not set stays NULL.
func CreateTestEvent(t *testing.T, db *gorm.DB, projectUUID, pathname string, timestamp time.Time, opts ...EventOption) events.AnalyticsEvent {
	t.Helper()

	event := events.AnalyticsEvent{
		UUID:      uuid.NewString(),
		ProjectID: projectUUID,
		SessionID: "sess_" + uuid.NewString(),
		Timestamp: timestamp.UTC(),
		Pathname:  pathname,
		EventType: events.EventTypePageView,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}
