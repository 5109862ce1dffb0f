package timerange

import (
	"fmt"
	"time"
)

// SQLiteGroupExpression returns the strftime expression that collapses a
// timestamp column into this granularity's bucket key. offsetSeconds shifts
// the stored UTC timestamps into the display zone before bucketing, so the
// returned keys are wall times in that zone.
func (g Granularity) SQLiteGroupExpression(column string, offsetSeconds int) (string, error) {
	format, err := g.sqliteFormat()
	if err != nil {
		return "", err
	}
	if offsetSeconds == 0 {
		return fmt.Sprintf("strftime('%s', %s)", format, column), nil
	}
	return fmt.Sprintf("strftime('%s', datetime(%s, '%+d seconds'))", format, column, offsetSeconds), nil
}

// ZoneOffset returns the seconds east of UTC that loc observes at the
// given instant, suitable for SQLiteGroupExpression.
func ZoneOffset(loc *time.Location, at time.Time) int {
	if loc == nil {
		return 0
	}
	_, offset := at.In(loc).Zone()
	return offset
}

func (g Granularity) sqliteFormat() (string, error) {
	switch g {
	case GranularitySecond:
		return "%Y-%m-%d %H:%M:%S", nil
	case GranularityMinute:
		return "%Y-%m-%d %H:%M", nil
	case GranularityHour:
		return "%Y-%m-%d %H", nil
	case GranularityDay:
		return "%Y-%m-%d", nil
	case GranularityMonth:
		return "%Y-%m", nil
	default:
		return "", fmt.Errorf("unsupported granularity: %s", g)
	}
}

// KeyLayout is the Go layout matching the strftime bucket key, used to parse
// keys coming back from grouped queries.
func (g Granularity) KeyLayout() string {
	switch g {
	case GranularitySecond:
		return "2006-01-02 15:04:05"
	case GranularityMinute:
		return "2006-01-02 15:04"
	case GranularityHour:
		return "2006-01-02 15"
	case GranularityDay:
		return "2006-01-02"
	case GranularityMonth:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}

// LabelLayout is the user-facing layout for a bucket of this granularity.
func (g Granularity) LabelLayout() string {
	switch g {
	case GranularitySecond:
		return "3:04:05 PM"
	case GranularityMinute:
		return "3:04 PM"
	case GranularityHour:
		return "3 PM"
	case GranularityDay:
		return "Jan 2"
	case GranularityMonth:
		return "Jan '06"
	default:
		return "Jan 2"
	}
}

// FormatLabel turns a raw bucket key from a grouped query into its display
// label. Keys produced with a zone offset already carry wall times in loc,
// so the key is parsed there without further conversion. Unparseable keys
// pass through as-is.
func (g Granularity) FormatLabel(key string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(g.KeyLayout(), key, loc)
	if err != nil {
		return key
	}
	return t.Format(g.LabelLayout())
}
