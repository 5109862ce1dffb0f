// Package referrers maps referrer URLs to friendly traffic-source names.
package referrers

import (
	"net/url"
	"strings"
)

// Referrer hostnames mapped to display names. Subdomains of these hosts
// resolve to the same name.
var knownSources = map[string]string{
	// Search engines
	"google.com":     "Google",
	"google.co.uk":   "Google",
	"google.de":      "Google",
	"google.fr":      "Google",
	"google.es":      "Google",
	"google.com.br":  "Google",
	"bing.com":       "Bing",
	"duckduckgo.com": "DuckDuckGo",
	"yahoo.com":      "Yahoo",
	"baidu.com":      "Baidu",
	"yandex.ru":      "Yandex",
	"ecosia.org":     "Ecosia",
	"kagi.com":       "Kagi",

	// Social media
	"x.com":           "X/Twitter",
	"twitter.com":     "X/Twitter",
	"t.co":            "X/Twitter",
	"facebook.com":    "Facebook",
	"fb.com":          "Facebook",
	"instagram.com":   "Instagram",
	"linkedin.com":    "LinkedIn",
	"lnkd.in":         "LinkedIn",
	"tiktok.com":      "TikTok",
	"pinterest.com":   "Pinterest",
	"reddit.com":      "Reddit",
	"threads.net":     "Threads",
	"bsky.app":        "Bluesky",
	"mastodon.social": "Mastodon",
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"discord.com":     "Discord",
	"whatsapp.com":    "WhatsApp",
	"t.me":            "Telegram",
	"slack.com":       "Slack",

	// Tech communities
	"news.ycombinator.com": "Hacker News",
	"hn.algolia.com":       "Hacker News",
	"lobste.rs":            "Lobsters",
	"producthunt.com":      "Product Hunt",
	"indiehackers.com":     "Indie Hackers",
	"dev.to":               "DEV Community",
	"medium.com":           "Medium",
	"substack.com":         "Substack",
	"github.com":           "GitHub",
	"gitlab.com":           "GitLab",
	"stackoverflow.com":    "Stack Overflow",

	// Email providers
	"mail.google.com":  "Gmail",
	"outlook.live.com": "Outlook",
	"mail.yahoo.com":   "Yahoo Mail",
	"mail.proton.me":   "Proton Mail",

	// Link shorteners
	"bit.ly":      "Bitly",
	"tinyurl.com": "TinyURL",
}

// FriendlyName returns a display name for a referrer value, which may be a
// bare hostname or a full URL. Unknown hostnames come back with the "www."
// prefix stripped and the first letter capitalized.
func FriendlyName(referrer string) string {
	hostname := Hostname(referrer)
	if hostname == "" {
		return referrer
	}

	if name, ok := knownSources[hostname]; ok {
		return name
	}

	if trimmed, ok := strings.CutPrefix(hostname, "www."); ok {
		if name, found := knownSources[trimmed]; found {
			return name
		}
		hostname = trimmed
	}

	for domain, name := range knownSources {
		if strings.HasSuffix(hostname, "."+domain) {
			return name
		}
	}

	return capitalizeFirst(hostname)
}

// Hostname extracts the lowercased host from a referrer value, accepting
// both full URLs and bare hostnames. Returns "" when nothing host-like can
// be found.
func Hostname(referrer string) string {
	referrer = strings.TrimSpace(strings.ToLower(referrer))
	if referrer == "" {
		return ""
	}

	if strings.Contains(referrer, "://") {
		if u, err := url.Parse(referrer); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}

	// Bare hostname, possibly with a path attached.
	host := referrer
	if idx := strings.IndexByte(host, '/'); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.IndexByte(host, ':'); idx != -1 {
		host = host[:idx]
	}
	return host
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
