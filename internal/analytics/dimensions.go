package analytics

// DimensionSpec describes one breakdown: the column it groups by, the JSON
// key its entries carry, and how many rows to keep (0 = unlimited).
type DimensionSpec struct {
	Name   string
	Column string
	Key    string
	Limit  int
}

// Dimensions is the full breakdown set, queried concurrently per request.
// The list is explicit on purpose; adding a dimension means adding a row
// here and a field on Result.
var Dimensions = []DimensionSpec{
	{Name: "osSummary", Column: "os_name", Key: "osName", Limit: 0},
	{Name: "deviceSummary", Column: "device_type", Key: "deviceType", Limit: 0},
	{Name: "browserSummary", Column: "browser_name", Key: "browserName", Limit: 0},
	{Name: "topPaths", Column: "pathname", Key: "pathname", Limit: 15},
	{Name: "topReferrers", Column: "referrer", Key: "referrer", Limit: 15},
	{Name: "topHostnames", Column: "hostname", Key: "hostname", Limit: 10},
	{Name: "topUtmSources", Column: "utm_source", Key: "utmSource", Limit: 5},
	{Name: "topCountries", Column: "country", Key: "country", Limit: 10},
	{Name: "topCities", Column: "city", Key: "city", Limit: 10},
}
