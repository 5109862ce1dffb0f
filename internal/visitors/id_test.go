package visitors_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pulsemetrics/internal/visitors"
)

func TestBuildAnonymousID(t *testing.T) {
	ip := "192.168.1.42"
	userAgent := "Mozilla/5.0"
	salt := "test-salt"
	at := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

	t.Run("generates consistent ID for same inputs within same day", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID(ip, userAgent, salt, at)
		id2 := visitors.BuildAnonymousID(ip, userAgent, salt, at.Add(6*time.Hour))

		assert.Equal(t, id1, id2, "Same inputs should generate same ID within a day")
		assert.Len(t, id1, 64, "SHA-256 hash should be 64 characters (hex encoded)")
	})

	t.Run("rotates at midnight UTC", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID(ip, userAgent, salt, at)
		id2 := visitors.BuildAnonymousID(ip, userAgent, salt, at.AddDate(0, 0, 1))

		assert.NotEqual(t, id1, id2, "Different days should generate different IDs")
	})

	t.Run("IP truncation groups the same /24", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID("192.168.1.42", userAgent, salt, at)
		id2 := visitors.BuildAnonymousID("192.168.1.200", userAgent, salt, at)
		id3 := visitors.BuildAnonymousID("192.168.2.42", userAgent, salt, at)

		assert.Equal(t, id1, id2, "Same /24 should generate same ID")
		assert.NotEqual(t, id1, id3, "Different /24 should generate different ID")
	})

	t.Run("generates different IDs for different user agents", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID(ip, userAgent, salt, at)
		id2 := visitors.BuildAnonymousID(ip, "Different Agent", salt, at)

		assert.NotEqual(t, id1, id2)
	})

	t.Run("generates different IDs for different salts", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID(ip, userAgent, "salt1", at)
		id2 := visitors.BuildAnonymousID(ip, userAgent, "salt2", at)

		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty inputs still produce a stable ID", func(t *testing.T) {
		id1 := visitors.BuildAnonymousID("", "", salt, at)
		id2 := visitors.BuildAnonymousID("", "", salt, at)

		assert.Equal(t, id1, id2)
		assert.Len(t, id1, 64)
	})
}

func TestTruncateIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want string
	}{
		{"ipv4", "203.0.113.57", "203.0.113.0"},
		{"ipv6", "2001:db8:85a3:8d3:1319:8a2e:370:7348", "2001:db8::"},
		{"malformed untouched", "not-an-ip", "not-an-ip"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visitors.TruncateIP(tc.ip))
		})
	}
}
