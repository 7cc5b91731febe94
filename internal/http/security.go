package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
)

type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// Peers allowed to name the client through X-Forwarded-For or X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

var (
	probeFragments = []string{
		"../", "..\\", ".env", ".git", ".ssh", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "eval(", "union select",
	}
	scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}
	oddMethods    = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const (
	maxURLLength = 2048
	maxProxyHops = 6
)

func trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	return slices.ContainsFunc(trustedProxies, func(p netip.Prefix) bool { return p.Contains(addr) })
}

// extractClientIP returns the peer address. Behind a trusted proxy it
// returns the first valid X-Forwarded-For entry, then X-Real-IP.
func extractClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !trusted(addr) {
		return peer
	}

	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if a, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return a.String()
		}
	}
	return peer
}

// detectSuspiciousRequest reports probe and scanner traffic. Callers log and
// count it; nothing is blocked.
func detectSuspiciousRequest(r *http.Request) bool {
	if slices.Contains(oddMethods, r.Method) ||
		len(r.URL.String()) > maxURLLength ||
		strings.Count(r.Header.Get("X-Forwarded-For"), ",") >= maxProxyHops {
		return true
	}

	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	target := strings.ToLower(r.URL.Path + "?" + query)
	if slices.ContainsFunc(probeFragments, func(f string) bool { return strings.Contains(target, f) }) {
		return true
	}
	agent := strings.ToLower(r.UserAgent())
	return slices.ContainsFunc(scannerAgents, func(a string) bool { return strings.Contains(agent, a) })
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
