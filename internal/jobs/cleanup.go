package jobs

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"pulsemetrics/internal/events"
	"pulsemetrics/internal/projects"
)

const cleanupBatchSize = 1000

// CleanupJob removes analytics events past the retention window and
// login sessions that have expired.
type CleanupJob struct {
	db            *gorm.DB
	logger        *slog.Logger
	retentionDays int
}

func NewCleanupJob(db *gorm.DB, logger *slog.Logger, retentionDays int) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Run deletes expired records. Events are removed in batches so the
// database is never locked for long stretches.
func (j *CleanupJob) Run() error {
	now := time.Now().UTC()

	if err := j.cleanupEvents(now); err != nil {
		return err
	}
	return j.cleanupSessions(now)
}

func (j *CleanupJob) cleanupEvents(now time.Time) error {
	cutoff := now.AddDate(0, 0, -j.retentionDays)

	j.logger.Info("Starting cleanup of old analytics events",
		slog.Int("retention_days", j.retentionDays),
		slog.Time("cutoff", cutoff))

	var countToDelete int64
	if err := j.db.Model(&events.AnalyticsEvent{}).
		Where("timestamp < ?", cutoff).
		Count(&countToDelete).Error; err != nil {
		j.logger.Error("Failed to count old analytics events", slog.Any("error", err))
		return err
	}

	if countToDelete == 0 {
		j.logger.Debug("No old analytics events to clean up")
		return nil
	}

	totalDeleted := int64(0)
	for {
		result := j.db.Where("timestamp < ?", cutoff).
			Limit(cleanupBatchSize).
			Delete(&events.AnalyticsEvent{})

		if result.Error != nil {
			j.logger.Error("Failed to delete old analytics events",
				slog.Any("error", result.Error),
				slog.Int64("deleted_so_far", totalDeleted))
			return result.Error
		}

		totalDeleted += result.RowsAffected
		if result.RowsAffected < int64(cleanupBatchSize) {
			break
		}

		// Small delay between batches to prevent lock contention
		time.Sleep(100 * time.Millisecond)
	}

	j.logger.Info("Cleaned up old analytics events",
		slog.Int64("deleted_count", totalDeleted),
		slog.Int("retention_days", j.retentionDays))

	return nil
}

func (j *CleanupJob) cleanupSessions(now time.Time) error {
	result := j.db.Where("expires_at < ?", now).Delete(&projects.Session{})
	if result.Error != nil {
		j.logger.Error("Failed to delete expired sessions", slog.Any("error", result.Error))
		return result.Error
	}

	if result.RowsAffected > 0 {
		j.logger.Info("Cleaned up expired sessions",
			slog.Int64("deleted_count", result.RowsAffected))
	}
	return nil
}
