// Package visitors builds privacy-first anonymous visitor identifiers.
package visitors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// BuildAnonymousID creates a privacy-first visitor identifier. The ID rotates
// daily at midnight UTC so visitors cannot be tracked across days. The IP is
// truncated before hashing and never stored.
func BuildAnonymousID(ip, userAgent, salt string, at time.Time) string {
	ip = TruncateIP(ip)
	if ip == "" {
		ip = "unknown"
	}
	if userAgent == "" {
		userAgent = "unknown"
	}

	date := at.UTC().Format("2006-01-02")
	base := fmt.Sprintf("%s|%s|%s|%s", ip, userAgent, date, salt)

	hash := sha256.Sum256([]byte(base))
	return hex.EncodeToString(hash[:])
}

// TruncateIP drops the host portion of an address before hashing: the last
// octet for IPv4, everything past the second group for IPv6.
func TruncateIP(ip string) string {
	if strings.Contains(ip, ".") {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			return fmt.Sprintf("%s.%s.%s.0", parts[0], parts[1], parts[2])
		}
	} else if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) > 2 {
			return strings.Join(parts[:2], ":") + "::"
		}
	}
	return ip
}
