package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pulsemetrics/internal/timerange"
)

// OnlineWindow is the trailing window used for the online visitor count.
const OnlineWindow = 2 * time.Minute

// Condition scopes every aggregation query: one project, one time window,
// optionally one event name.
type Condition struct {
	ProjectID string
	Range     timerange.Range
	EventName *string
}

func (c Condition) whereClause() (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("project_id = ? AND timestamp >= ?")
	args := []interface{}{c.ProjectID, c.Range.Start.UTC()}

	if c.Range.End != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, c.Range.End.UTC())
	}
	if c.EventName != nil {
		sb.WriteString(" AND event_name = ?")
		args = append(args, *c.EventName)
	}
	return sb.String(), args
}

// BreakdownRow is one raw grouped row before presentation.
type BreakdownRow struct {
	Label string
	Count int64
}

// Totals holds the two scalar counts for a window.
type Totals struct {
	TotalVisits    int64
	UniqueVisitors int64
}

// SeriesRow is one raw time bucket keyed by its strftime value.
type SeriesRow struct {
	Bucket         string
	TotalVisits    int64
	UniqueVisitors int64
}

// Store runs aggregation queries against the analytics_events table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DimensionBreakdown groups events by one dimension column, most frequent
// first. NULL rows are excluded rather than bucketed under a placeholder.
// Column names come from the fixed dimension table, never from user input.
func (s *Store) DimensionBreakdown(ctx context.Context, cond Condition, spec DimensionSpec) ([]BreakdownRow, error) {
	where, args := cond.whereClause()

	query := fmt.Sprintf(`
    SELECT
        %s AS label,
        COUNT(*) AS count
    FROM analytics_events
    WHERE %s
    AND %s IS NOT NULL
    GROUP BY %s
    ORDER BY count DESC
    `, spec.Column, where, spec.Column, spec.Column)

	if spec.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", spec.Limit)
	}

	var rows []BreakdownRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching %s breakdown: %w", spec.Name, err)
	}
	return rows, nil
}

// EventSummary groups events by type and name, most frequent first.
func (s *Store) EventSummary(ctx context.Context, cond Condition) ([]EventSummaryEntry, error) {
	where, args := cond.whereClause()

	query := fmt.Sprintf(`
    SELECT
        event_type AS event_type,
        event_name AS event_name,
        COUNT(*) AS count
    FROM analytics_events
    WHERE %s
    GROUP BY event_type, event_name
    ORDER BY count DESC
    `, where)

	var rows []EventSummaryEntry
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching event summary: %w", err)
	}
	return rows, nil
}

// CountTotals returns the visit and unique visitor counts for a window.
func (s *Store) CountTotals(ctx context.Context, cond Condition) (Totals, error) {
	where, args := cond.whereClause()

	query := fmt.Sprintf(`
    SELECT
        COUNT(*) AS total_visits,
        COUNT(DISTINCT visitor_id) AS unique_visitors
    FROM analytics_events
    WHERE %s
    `, where)

	var totals Totals
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&totals).Error; err != nil {
		return Totals{}, fmt.Errorf("fetching totals: %w", err)
	}
	return totals, nil
}

// Series groups events into time buckets at the window's granularity,
// ascending. Bucket keys are wall times in loc; the zone offset is taken at
// the range start, so a DST switch inside the window keeps the old offset.
// Buckets without events do not appear.
func (s *Store) Series(ctx context.Context, cond Condition, loc *time.Location) ([]SeriesRow, error) {
	offset := timerange.ZoneOffset(loc, cond.Range.Start)
	expr, err := cond.Range.Bucket.SQLiteGroupExpression("timestamp", offset)
	if err != nil {
		return nil, err
	}

	where, args := cond.whereClause()

	query := fmt.Sprintf(`
    SELECT
        %s AS bucket,
        COUNT(*) AS total_visits,
        COUNT(DISTINCT visitor_id) AS unique_visitors
    FROM analytics_events
    WHERE %s
    GROUP BY bucket
    ORDER BY bucket ASC
    `, expr, where)

	var rows []SeriesRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching frequency series: %w", err)
	}
	return rows, nil
}

// OnlineVisitors counts distinct visitors seen in the trailing online
// window. The count ignores the request's filter on purpose.
func (s *Store) OnlineVisitors(ctx context.Context, projectID string, now time.Time) (int64, error) {
	query := `
    SELECT COUNT(DISTINCT visitor_id) AS count
    FROM analytics_events
    WHERE project_id = ?
    AND timestamp >= ?
    `

	var count int64
	err := s.db.WithContext(ctx).Raw(query, projectID, now.UTC().Add(-OnlineWindow)).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("fetching online visitors: %w", err)
	}
	return count, nil
}
