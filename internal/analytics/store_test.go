package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsemetrics/internal/analytics"
	"pulsemetrics/internal/testsupport"
	"pulsemetrics/internal/timerange"
)

func dayRange(start time.Time, days int) timerange.Range {
	end := start.AddDate(0, 0, days).Add(-time.Millisecond)
	return timerange.Range{Start: start, End: &end, Bucket: timerange.GranularityDay}
}

func TestStoreDimensionBreakdown(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	base := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	cond := analytics.Condition{ProjectID: projectID, Range: dayRange(base.Truncate(24*time.Hour), 1)}

	browserSpec := analytics.DimensionSpec{Name: "browserSummary", Column: "browser_name", Key: "browserName"}

	for i := 0; i < 3; i++ {
		testsupport.CreateTestEvent(t, db, projectID, "/home", base,
			testsupport.WithDimensions("Chrome", "macOS", "desktop"))
	}
	testsupport.CreateTestEvent(t, db, projectID, "/home", base,
		testsupport.WithDimensions("Firefox", "Linux", "desktop"))
	// No dimensions set: browser_name stays NULL
	testsupport.CreateTestEvent(t, db, projectID, "/home", base)

	t.Run("orders by count and excludes NULL rows", func(t *testing.T) {
		rows, err := store.DimensionBreakdown(ctx, cond, browserSpec)
		require.NoError(t, err)

		require.Len(t, rows, 2, "NULL browser rows must not appear")
		assert.Equal(t, analytics.BreakdownRow{Label: "Chrome", Count: 3}, rows[0])
		assert.Equal(t, analytics.BreakdownRow{Label: "Firefox", Count: 1}, rows[1])
	})

	t.Run("applies the dimension limit", func(t *testing.T) {
		limited := browserSpec
		limited.Limit = 1

		rows, err := store.DimensionBreakdown(ctx, cond, limited)
		require.NoError(t, err)

		require.Len(t, rows, 1)
		assert.Equal(t, "Chrome", rows[0].Label)
	})

	t.Run("scopes to the project", func(t *testing.T) {
		otherCond := cond
		otherCond.ProjectID = uuid.NewString()

		rows, err := store.DimensionBreakdown(ctx, otherCond, browserSpec)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("scopes to the time window", func(t *testing.T) {
		pastCond := cond
		pastCond.Range = dayRange(base.AddDate(0, 0, -10), 1)

		rows, err := store.DimensionBreakdown(ctx, pastCond, browserSpec)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestStoreCountTotals(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	base := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	cond := analytics.Condition{ProjectID: projectID, Range: dayRange(base.Truncate(24*time.Hour), 1)}

	testsupport.CreateTestEvent(t, db, projectID, "/a", base, testsupport.WithVisitor("v1"))
	testsupport.CreateTestEvent(t, db, projectID, "/b", base, testsupport.WithVisitor("v1"))
	testsupport.CreateTestEvent(t, db, projectID, "/c", base, testsupport.WithVisitor("v2"))
	testsupport.CreateTestEvent(t, db, projectID, "/d", base) // anonymous row without visitor

	totals, err := store.CountTotals(ctx, cond)
	require.NoError(t, err)

	assert.Equal(t, int64(4), totals.TotalVisits)
	assert.Equal(t, int64(2), totals.UniqueVisitors, "NULL visitor IDs do not count as a visitor")
}

func TestStoreCountTotalsScopedByEventName(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	base := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

	testsupport.CreateTestEvent(t, db, projectID, "/cta", base, testsupport.WithEventName("cta_clicked"))
	testsupport.CreateTestEvent(t, db, projectID, "/cta", base, testsupport.WithEventName("cta_clicked"))
	testsupport.CreateTestEvent(t, db, projectID, "/signup", base, testsupport.WithEventName("signed_up"))
	testsupport.CreateTestEvent(t, db, projectID, "/home", base)

	eventName := "cta_clicked"
	cond := analytics.Condition{
		ProjectID: projectID,
		Range:     dayRange(base.Truncate(24*time.Hour), 1),
		EventName: &eventName,
	}

	totals, err := store.CountTotals(ctx, cond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalVisits)
}

func TestStoreSeries(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	cond := analytics.Condition{ProjectID: projectID, Range: dayRange(weekStart, 7)}

	// Monday and Wednesday only; the days between stay empty.
	testsupport.CreateTestEvent(t, db, projectID, "/a", weekStart.Add(9*time.Hour), testsupport.WithVisitor("v1"))
	testsupport.CreateTestEvent(t, db, projectID, "/b", weekStart.Add(11*time.Hour), testsupport.WithVisitor("v2"))
	testsupport.CreateTestEvent(t, db, projectID, "/c", weekStart.AddDate(0, 0, 2).Add(15*time.Hour), testsupport.WithVisitor("v1"))

	rows, err := store.Series(ctx, cond, time.UTC)
	require.NoError(t, err)

	require.Len(t, rows, 2, "empty buckets are not synthesized")
	assert.Equal(t, analytics.SeriesRow{Bucket: "2024-03-11", TotalVisits: 2, UniqueVisitors: 2}, rows[0])
	assert.Equal(t, analytics.SeriesRow{Bucket: "2024-03-13", TotalVisits: 1, UniqueVisitors: 1}, rows[1])
}

func TestStoreSeriesDisplayZone(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	projectID := uuid.NewString()

	t.Run("hour buckets carry local wall times", func(t *testing.T) {
		day := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
		cond := analytics.Condition{ProjectID: projectID, Range: timerange.Range{
			Start:  day,
			Bucket: timerange.GranularityHour,
		}}

		// 15:00 UTC is 16:00 in Berlin (CET, +01:00).
		testsupport.CreateTestEvent(t, db, projectID, "/a", day.Add(15*time.Hour), testsupport.WithVisitor("v1"))

		rows, err := store.Series(ctx, cond, berlin)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-03-13 16", rows[0].Bucket)
		assert.Equal(t, "4 PM", timerange.GranularityHour.FormatLabel(rows[0].Bucket, berlin))
	})

	t.Run("late evening event rolls into the local next day", func(t *testing.T) {
		other := uuid.NewString()
		weekStart := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
		cond := analytics.Condition{ProjectID: other, Range: dayRange(weekStart, 7)}

		// 23:30 UTC on the 13th is 00:30 on the 14th in Berlin.
		testsupport.CreateTestEvent(t, db, other, "/b", weekStart.AddDate(0, 0, 2).Add(23*time.Hour+30*time.Minute))

		rows, err := store.Series(ctx, cond, berlin)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-03-14", rows[0].Bucket)
	})
}

func TestStoreEventSummary(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	base := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	cond := analytics.Condition{ProjectID: projectID, Range: dayRange(base.Truncate(24*time.Hour), 1)}

	testsupport.CreateTestEvent(t, db, projectID, "/home", base)
	testsupport.CreateTestEvent(t, db, projectID, "/home", base)
	testsupport.CreateTestEvent(t, db, projectID, "/cta", base, testsupport.WithEventName("cta_clicked"))

	rows, err := store.EventSummary(ctx, cond)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "pageview", rows[0].EventType)
	assert.Nil(t, rows[0].EventName)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.Equal(t, "custom", rows[1].EventType)
	require.NotNil(t, rows[1].EventName)
	assert.Equal(t, "cta_clicked", *rows[1].EventName)
}

func TestStoreOnlineVisitors(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	store := analytics.NewStore(db)
	ctx := context.Background()

	projectID := uuid.NewString()
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	testsupport.CreateTestEvent(t, db, projectID, "/a", now.Add(-30*time.Second), testsupport.WithVisitor("v1"))
	testsupport.CreateTestEvent(t, db, projectID, "/b", now.Add(-90*time.Second), testsupport.WithVisitor("v1"))
	testsupport.CreateTestEvent(t, db, projectID, "/c", now.Add(-100*time.Second), testsupport.WithVisitor("v2"))
	// Outside the trailing window
	testsupport.CreateTestEvent(t, db, projectID, "/d", now.Add(-5*time.Minute), testsupport.WithVisitor("v3"))

	count, err := store.OnlineVisitors(ctx, projectID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
