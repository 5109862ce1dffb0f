package analytics

import (
	"encoding/json"
)

// BreakdownEntry is one row of a dimension breakdown. It serializes as
// {<dimension key>: <label>, "count": <n>}, so each dimension's entries
// carry their own key name.
type BreakdownEntry struct {
	Key   string
	Label string
	Count int64
}

func (e BreakdownEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		e.Key:   e.Label,
		"count": e.Count,
	})
}

// EventSummaryEntry is one row of the event type/name breakdown.
type EventSummaryEntry struct {
	EventType string  `json:"eventType"`
	EventName *string `json:"eventName"`
	Count     int64   `json:"count"`
}

// FrequencyPoint is one bucket of the time series. Time carries the
// display label for the bucket, ascending order, no zero-filling.
type FrequencyPoint struct {
	Time           string `json:"time"`
	TotalVisits    int64  `json:"totalVisits"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
}

// Result is the full analytics response document for one request. It is
// assembled once and discarded after serialization.
type Result struct {
	URL            string  `json:"url"`
	Name           string  `json:"name"`
	OnlineVisitors int64   `json:"onlineVisitors"`
	Filter         string  `json:"filter"`
	EventName      *string `json:"eventName,omitempty"`

	TotalVisits          int64   `json:"totalVisits"`
	TotalVisitsChange    *string `json:"totalVisitsChange"`
	UniqueVisitors       int64   `json:"uniqueVisitors"`
	UniqueVisitorsChange *string `json:"uniqueVisitorsChange"`

	EventSummary   []EventSummaryEntry `json:"eventSummary"`
	OSSummary      []BreakdownEntry    `json:"osSummary"`
	DeviceSummary  []BreakdownEntry    `json:"deviceSummary"`
	BrowserSummary []BreakdownEntry    `json:"browserSummary"`
	TopPaths       []BreakdownEntry    `json:"topPaths"`
	TopReferrers   []BreakdownEntry    `json:"topReferrers"`
	TopHostnames   []BreakdownEntry    `json:"topHostnames"`
	TopUtmSources  []BreakdownEntry    `json:"topUtmSources"`
	TopCountries   []BreakdownEntry    `json:"topCountries"`
	TopCities      []BreakdownEntry    `json:"topCities"`

	Frequency []FrequencyPoint `json:"frequency"`
}
