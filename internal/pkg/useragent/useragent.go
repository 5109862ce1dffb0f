// Package useragent extracts browser, OS and device details from a raw
// User-Agent header for event enrichment.
package useragent

import (
	ua "github.com/mileusna/useragent"
)

// Device types stored in the device_type dimension.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Details holds the parsed dimensions of a User-Agent string. Empty fields
// mean the parser could not identify that part.
type Details struct {
	BrowserName    string
	BrowserVersion string
	OSName         string
	OSVersion      string
	DeviceType     string
	Bot            bool
}

// Parse extracts event dimensions from a raw User-Agent header.
func Parse(userAgent string) Details {
	if userAgent == "" {
		return Details{}
	}

	parsed := ua.Parse(userAgent)

	details := Details{
		BrowserName:    parsed.Name,
		BrowserVersion: parsed.Version,
		OSName:         parsed.OS,
		OSVersion:      parsed.OSVersion,
		Bot:            parsed.Bot,
	}

	switch {
	case parsed.Bot:
		details.DeviceType = DeviceBot
	case parsed.Tablet:
		details.DeviceType = DeviceTablet
	case parsed.Mobile:
		details.DeviceType = DeviceMobile
	case parsed.Desktop:
		details.DeviceType = DeviceDesktop
	}

	return details
}
