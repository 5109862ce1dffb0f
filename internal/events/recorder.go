package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recorder persists analytics events.
type Recorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecorder(db *gorm.DB, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record inserts a single event, filling in the identity and timestamp
// defaults the beacon payload leaves blank.
func (r *Recorder) Record(ctx context.Context, event *AnalyticsEvent) error {
	if event.ProjectID == "" {
		return fmt.Errorf("record event: project id is required")
	}
	if event.Pathname == "" {
		return fmt.Errorf("record event: pathname is required")
	}
	if event.UUID == "" {
		event.UUID = uuid.NewString()
	}
	if event.EventType == "" {
		event.EventType = EventTypePageView
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	r.logger.Debug("recorded analytics event",
		"project_id", event.ProjectID,
		"event_type", event.EventType,
		"pathname", event.Pathname,
	)
	return nil
}

// NullableString returns nil for an empty string so empty beacon fields land
// as NULL instead of empty-string dimension values.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
