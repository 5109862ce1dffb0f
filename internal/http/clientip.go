package http

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var privateBlocks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"fc00::/7",
	"fe80::/10",
	"::1/128",
	"127.0.0.0/8",
)

// clientIP resolves the originating public address of a request, walking
// the usual reverse-proxy headers before falling back to the socket
// address. Requests with no resolvable public address map to loopback so
// visitor hashing stays deterministic.
func clientIP(c *fiber.Ctx) string {
	if ip := pickPublicIP(strings.Split(c.Get(fiber.HeaderXForwardedFor), ",")); ip != "" {
		return ip
	}

	for _, header := range []string{"X-Real-IP", "CF-Connecting-IP", "True-Client-IP"} {
		if value := c.Get(header); value != "" {
			if ip := pickPublicIP([]string{value}); ip != "" {
				return ip
			}
		}
	}

	if forwarded := c.Get(fiber.HeaderForwarded); forwarded != "" {
		if ip := pickPublicIP(forwardedFor(forwarded)); ip != "" {
			return ip
		}
	}

	if ip := pickPublicIP([]string{c.Context().RemoteAddr().String()}); ip != "" {
		return ip
	}
	if ip := pickPublicIP([]string{c.IP()}); ip != "" {
		return ip
	}

	return "127.0.0.1"
}

// pickPublicIP returns the first public IPv4 in the candidate list,
// falling back to the first public IPv6.
func pickPublicIP(candidates []string) string {
	var v6Fallback string

	for _, raw := range candidates {
		clean, parsed := normalizeIP(raw)
		if parsed == nil || isPrivateIP(parsed) || parsed.IsUnspecified() {
			continue
		}

		if parsed.To4() != nil {
			return clean
		}
		if v6Fallback == "" {
			v6Fallback = clean
		}
	}

	return v6Fallback
}

// normalizeIP parses a raw candidate that may carry quotes, a port, a
// zone identifier or IPv6 brackets.
func normalizeIP(raw string) (string, net.IP) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"")
	if clean == "" {
		return "", nil
	}

	if percent := strings.IndexByte(clean, '%'); percent != -1 {
		clean = clean[:percent]
	}

	if addrPort, err := netip.ParseAddrPort(clean); err == nil {
		return canonicalAddr(addrPort.Addr())
	}

	trimmed := strings.TrimSuffix(strings.TrimPrefix(clean, "["), "]")
	if addr, err := netip.ParseAddr(trimmed); err == nil {
		return canonicalAddr(addr)
	}

	if host, _, err := net.SplitHostPort(clean); err == nil {
		return normalizeIP(host)
	}

	return "", nil
}

func canonicalAddr(addr netip.Addr) (string, net.IP) {
	if addr.Is4In6() {
		addr = addr.Unmap()
	}
	s := addr.String()
	return s, net.ParseIP(s)
}

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// forwardedFor extracts the for= addresses from an RFC 7239 Forwarded
// header.
func forwardedFor(header string) []string {
	var candidates []string

	for _, entry := range strings.Split(header, ",") {
		for _, part := range strings.Split(entry, ";") {
			part = strings.TrimSpace(part)
			if strings.HasPrefix(strings.ToLower(part), "for=") {
				candidates = append(candidates, part[len("for="):])
			}
		}
	}

	return candidates
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}
