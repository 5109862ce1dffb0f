package analytics

import (
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pulsemetrics/internal/pkg/referrers"
)

// labeler turns raw grouped rows into display-ready breakdown entries:
// ISO country codes become common names, device and OS labels get title
// casing, referrers get friendly source names. Unknown values pass
// through untouched.
type labeler struct {
	countries *gountries.Query
}

func newLabeler() *labeler {
	return &labeler{countries: gountries.New()}
}

func (l *labeler) countryName(code string) string {
	country, err := l.countries.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}

func (l *labeler) present(spec DimensionSpec, rows []BreakdownRow) []BreakdownEntry {
	// cases.Caser is stateful, so build one per call
	titleCase := cases.Title(language.English)

	entries := make([]BreakdownEntry, len(rows))
	for i, row := range rows {
		label := row.Label
		switch spec.Key {
		case "country":
			label = l.countryName(label)
		case "deviceType", "osName":
			label = titleCase.String(label)
		case "referrer":
			label = referrers.FriendlyName(label)
		}
		entries[i] = BreakdownEntry{Key: spec.Key, Label: label, Count: row.Count}
	}
	return entries
}
