// Package events holds the analytics event model and the write path that
// persists beacon payloads.
package events

import "time"

// Event types stored in the event_type column.
const (
	EventTypePageView = "pageview"
	EventTypeCustom   = "custom"
)

// AnalyticsEvent represents a single tracked page view or custom event.
// Dimension columns are nullable on purpose: rows without a value for a
// dimension stay out of that dimension's breakdown instead of collapsing
// into a synthetic bucket.
type AnalyticsEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UUID      string    `gorm:"size:36;uniqueIndex;not null"`
	ProjectID string    `gorm:"column:project_id;size:36;index:idx_project_timestamp;not null"`
	SessionID string    `gorm:"column:session_id;size:64;not null"`
	VisitorID *string   `gorm:"column:visitor_id;size:64;index"`
	Timestamp time.Time `gorm:"index:idx_project_timestamp;not null"`

	Pathname string  `gorm:"not null"`
	Referrer *string `gorm:"type:text"`
	Hostname *string `gorm:"type:text"`

	UTMSource   *string `gorm:"column:utm_source;size:64"`
	UTMMedium   *string `gorm:"column:utm_medium;size:64"`
	UTMCampaign *string `gorm:"column:utm_campaign;size:64"`
	UTMTerm     *string `gorm:"column:utm_term;size:64"`
	UTMContent  *string `gorm:"column:utm_content;size:64"`

	EventType string  `gorm:"column:event_type;size:64;not null;index"`
	EventName *string `gorm:"column:event_name;size:128;index"`
	EventData *string `gorm:"column:event_data;type:text"`

	BrowserName    *string `gorm:"column:browser_name;size:64"`
	BrowserVersion *string `gorm:"column:browser_version;size:64"`
	OSName         *string `gorm:"column:os_name;size:64"`
	OSVersion      *string `gorm:"column:os_version;size:64"`
	DeviceType     *string `gorm:"column:device_type;size:64"`
	Country        *string `gorm:"size:2"`
	City           *string `gorm:"size:128"`
	UserAgent      *string `gorm:"column:user_agent;type:text"`

	Duration  *int `gorm:"column:duration"` // seconds
	CreatedAt time.Time
}

// TableName overrides the default gorm table name.
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
