package referrers

import "testing"

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		referrer string
		expected string
	}{
		// Known referrers
		{"google.com", "Google"},
		{"news.ycombinator.com", "Hacker News"},
		{"x.com", "X/Twitter"},
		{"twitter.com", "X/Twitter"},
		{"reddit.com", "Reddit"},
		{"linkedin.com", "LinkedIn"},

		// Full URLs
		{"https://news.ycombinator.com/item?id=1", "Hacker News"},
		{"https://www.google.com/search?q=analytics", "Google"},
		{"http://example.com/blog/post", "Example.com"},

		// With www prefix
		{"www.google.com", "Google"},
		{"www.reddit.com", "Reddit"},

		// Subdomains of known referrers
		{"m.facebook.com", "Facebook"},
		{"mobile.twitter.com", "X/Twitter"},

		// Unknown referrers (capitalized)
		{"example.com", "Example.com"},
		{"www.example.com", "Example.com"}, // www. stripped
		{"myblog.io", "Myblog.io"},

		// Case insensitive
		{"GOOGLE.COM", "Google"},
		{"News.Ycombinator.Com", "Hacker News"},
	}

	for _, tt := range tests {
		t.Run(tt.referrer, func(t *testing.T) {
			got := FriendlyName(tt.referrer)
			if got != tt.expected {
				t.Errorf("FriendlyName(%q) = %q, want %q", tt.referrer, got, tt.expected)
			}
		})
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		referrer string
		expected string
	}{
		{"https://blog.example.com/post", "blog.example.com"},
		{"http://example.com:8080/x", "example.com"},
		{"example.com/path", "example.com"},
		{"example.com:443", "example.com"},
		{"example.com", "example.com"},
		{"  Example.COM  ", "example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.referrer, func(t *testing.T) {
			if got := Hostname(tt.referrer); got != tt.expected {
				t.Errorf("Hostname(%q) = %q, want %q", tt.referrer, got, tt.expected)
			}
		})
	}
}
