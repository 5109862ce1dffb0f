package analytics

import "fmt"

// PercentChange computes the relative change between two period totals.
// A zero baseline has no meaningful percentage, so it yields nil rather
// than an infinity or a fake 100%.
func PercentChange(current, previous int64) *float64 {
	if previous == 0 {
		return nil
	}
	prev := float64(previous)
	if prev < 0 {
		prev = -prev
	}
	change := (float64(current) - float64(previous)) / prev * 100
	return &change
}

// FormatChange renders a percent change with one decimal and an explicit
// sign for non-negative values ("+12.5%", "-8.2%", "+0.0%"). Nil stays nil
// so the API can distinguish "no baseline" from "no change".
func FormatChange(change *float64) *string {
	if change == nil {
		return nil
	}
	var formatted string
	if *change >= 0 {
		formatted = fmt.Sprintf("+%.1f%%", *change)
	} else {
		formatted = fmt.Sprintf("%.1f%%", *change)
	}
	return &formatted
}
