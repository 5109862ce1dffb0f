// Package geoip resolves client IPs to country and city for ingestion
// enrichment. Lookups are optional; without a database every lookup
// returns nothing.
package geoip

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Resolver wraps an optional GeoLite2 city database.
type Resolver struct {
	reader *geoip2.Reader
	logger *slog.Logger
}

// NewResolver opens the GeoLite2 database at path. A missing or unreadable
// database is not an error; the resolver just stays empty.
func NewResolver(path string, logger *slog.Logger) *Resolver {
	r := &Resolver{logger: logger}

	if path == "" {
		logger.Debug("GeoIP database path not configured, lookups disabled")
		return r
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found, lookups disabled",
			slog.String("path", path),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return r
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Error("Failed to open GeoLite2 database",
			slog.String("path", path),
			slog.Any("error", err))
		return r
	}

	logger.Info("GeoLite2 database initialized",
		slog.String("path", path))
	r.reader = reader
	return r
}

// Lookup returns the ISO country code and city name for an IP. Private,
// loopback and unparseable addresses resolve to nothing.
func (r *Resolver) Lookup(ip string) (country, city *string) {
	if r.reader == nil {
		return nil, nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return nil, nil
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", slog.Any("error", err))
		return nil, nil
	}

	if code := record.Country.IsoCode; code != "" {
		country = &code
	}
	if name := record.City.Names["en"]; name != "" {
		city = &name
	}
	return country, city
}

// Close releases the underlying database.
func (r *Resolver) Close() {
	if r.reader != nil {
		r.reader.Close()
	}
}
