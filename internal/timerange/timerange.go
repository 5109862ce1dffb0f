// Package timerange resolves dashboard filter tokens into concrete time
// windows and bucket granularities.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// Granularity represents the bucket size used to group events over a range.
type Granularity string

const (
	GranularitySecond Granularity = "second"
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
	GranularityMonth  Granularity = "month"
)

// Filter tokens accepted by Resolve.
const (
	FilterLast10Seconds = "10secs"
	FilterLast5Minutes  = "5mins"
	FilterToday         = "today"
	FilterYesterday     = "yesterday"
	FilterThisWeek      = "thisweek"
	FilterThisMonth     = "thismonth"
	FilterThisYear      = "thisyear"
	FilterLast3Years    = "last3years"
)

// ErrUnknownToken is returned by Resolve for a filter token outside the
// supported set.
var ErrUnknownToken = errors.New("unknown time range token")

// Range is a half-open or closed time window. A nil End means the window is
// open-ended at query time ("everything since Start").
type Range struct {
	Start  time.Time
	End    *time.Time
	Bucket Granularity
}

// Contains reports whether t falls inside the range. Both boundaries are
// inclusive, matching the gte/lte conditions used in queries.
func (r Range) Contains(t time.Time) bool {
	if t.Before(r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Resolve maps a filter token to its current and previous windows. All
// calendar math happens in now's location, so callers pick the canonical
// zone by constructing now accordingly.
func Resolve(token string, now time.Time) (current Range, previous Range, err error) {
	loc := now.Location()

	switch token {
	case FilterLast10Seconds:
		current = Range{Start: now.Add(-10 * time.Second), Bucket: GranularitySecond}
		previous = shiftRange(current, -10*time.Second)
	case FilterLast5Minutes:
		current = Range{Start: now.Add(-5 * time.Minute), Bucket: GranularityMinute}
		previous = shiftRange(current, -5*time.Minute)
	case FilterToday:
		current = closedRange(startOfDay(now), endOfDay(now), GranularityHour)
		previous = shiftRange(current, -24*time.Hour)
	case FilterYesterday:
		y := now.AddDate(0, 0, -1)
		current = closedRange(startOfDay(y), endOfDay(y), GranularityHour)
		previous = shiftRange(current, -24*time.Hour)
	case FilterThisWeek:
		start := startOfWeek(now)
		current = closedRange(start, start.AddDate(0, 0, 7).Add(-time.Millisecond), GranularityDay)
		previous = shiftRange(current, -7*24*time.Hour)
	case FilterThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
		current = closedRange(start, end, GranularityDay)
		previous = closedRange(addMonthsClamped(start, -1), addMonthsClamped(end, -1), GranularityDay)
	case FilterThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		end := time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, loc).Add(-time.Millisecond)
		current = closedRange(start, end, GranularityMonth)
		previous = closedRange(addYearsClamped(start, -1), addYearsClamped(end, -1), GranularityMonth)
	case FilterLast3Years:
		start := time.Date(now.Year()-3, 1, 1, 0, 0, 0, 0, loc)
		current = closedRange(start, now, GranularityMonth)
		prevEnd := start.Add(-time.Millisecond)
		previous = closedRange(addYearsClamped(prevEnd, -3), prevEnd, GranularityMonth)
	default:
		return Range{}, Range{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}

	return current, previous, nil
}

// ValidToken reports whether token is one of the supported filter tokens.
func ValidToken(token string) bool {
	switch token {
	case FilterLast10Seconds, FilterLast5Minutes, FilterToday, FilterYesterday,
		FilterThisWeek, FilterThisMonth, FilterThisYear, FilterLast3Years:
		return true
	}
	return false
}

func closedRange(start, end time.Time, bucket Granularity) Range {
	return Range{Start: start, End: &end, Bucket: bucket}
}

// shiftRange moves a range back by d. An open-ended current range closes at
// its own start, so the previous window is the same length ending where the
// current one begins.
func shiftRange(r Range, d time.Duration) Range {
	if r.End == nil {
		end := r.Start
		return Range{Start: r.Start.Add(d), End: &end, Bucket: r.Bucket}
	}
	shiftedEnd := r.End.Add(d)
	return Range{Start: r.Start.Add(d), End: &shiftedEnd, Bucket: r.Bucket}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// startOfWeek returns the Monday midnight opening the ISO week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return startOfDay(t).AddDate(0, 0, -(weekday - 1))
}

// addMonthsClamped shifts t by the given number of months, clamping the day
// of month to the target month's length instead of overflowing into the next
// month the way AddDate does (Mar 31 - 1 month is Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// addYearsClamped shifts t by whole years with the same day clamping, so
// Feb 29 lands on Feb 28 in a non-leap target year.
func addYearsClamped(t time.Time, years int) time.Time {
	return addMonthsClamped(t, years*12)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
