// Package geo resolves client IP addresses to geographic locations using a
// rotation of external providers, an optional local MaxMind database, and a
// bounded TTL cache.
package geo

import (
	"net"
	"strings"

	"github.com/pariz/gountries"
)

// FallbackProvider marks locations produced without a successful lookup.
const FallbackProvider = "fallback"

// Location is the resolved geography for one IP address.
type Location struct {
	IP          string
	CountryCode string
	CountryName string
	Region      string
	City        string
	Latitude    float64
	Longitude   float64
	Timezone    string
	ISP         string
	Provider    string
}

// Fallback returns the location recorded when no provider can resolve ip.
// CountryName is "Unknown" so downstream aggregation has a stable bucket.
func Fallback(ip string) Location {
	return Location{
		IP:          ip,
		CountryName: "Unknown",
		Provider:    FallbackProvider,
	}
}

// Reserved addresses that must never reach an external provider.
var reservedNames = map[string]struct{}{
	"localhost":  {},
	"testclient": {},
}

// IsReserved reports whether ip should skip provider lookups entirely:
// empty values, loopback, unspecified, and local test aliases.
func IsReserved(ip string) bool {
	if ip == "" {
		return true
	}
	if _, ok := reservedNames[strings.ToLower(ip)]; ok {
		return true
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.IsLoopback() || parsed.IsUnspecified()
	}
	return false
}

var countries = gountries.New()

// CountryName converts an ISO 3166-1 alpha-2 code to a display name. The
// code itself is returned when it is not recognized.
func CountryName(code string) string {
	if code == "" {
		return ""
	}
	country, err := countries.FindCountryByAlpha(code)
	if err != nil {
		return code
	}
	return country.Name.Common
}
