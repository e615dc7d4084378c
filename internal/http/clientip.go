package http

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientIP extracts the visitor address, preferring reverse-proxy headers
// over the socket address so clicks behind a load balancer geolocate
// correctly.
func clientIP(c *fiber.Ctx) string {
	if ip := firstValidIP(strings.Split(c.Get("X-Forwarded-For"), ",")); ip != "" {
		return ip
	}

	for _, header := range []string{"X-Real-IP", "CF-Connecting-IP", "True-Client-IP"} {
		if ip := firstValidIP([]string{c.Get(header)}); ip != "" {
			return ip
		}
	}

	return c.IP()
}

func firstValidIP(values []string) string {
	for _, raw := range values {
		clean := strings.TrimSpace(raw)
		if clean == "" {
			continue
		}
		// Strip a zone identifier (fe80::1%eth0) before parsing.
		if percent := strings.Index(clean, "%"); percent != -1 {
			clean = clean[:percent]
		}
		if host, _, err := net.SplitHostPort(clean); err == nil {
			clean = host
		}
		if net.ParseIP(clean) != nil {
			return clean
		}
	}
	return ""
}
