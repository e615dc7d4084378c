package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Provider resolves a single IP address to a location.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Location, error)
}

// HTTPProvider queries a JSON geolocation API over HTTP.
type HTTPProvider struct {
	name   string
	urlFor func(ip string) string
	parse  func(ip string, body []byte) (Location, error)
	client *http.Client
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Lookup(ctx context.Context, ip string) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.urlFor(ip), nil)
	if err != nil {
		return Location{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo: %s returned status %d", p.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Location{}, err
	}
	return p.parse(ip, body)
}

// NewIPAPIProvider queries ipapi.co. baseURL overrides the endpoint in tests.
func NewIPAPIProvider(client *http.Client, baseURL string) *HTTPProvider {
	if baseURL == "" {
		baseURL = "http://ipapi.co"
	}
	return &HTTPProvider{
		name:   "ipapi.co",
		client: client,
		urlFor: func(ip string) string {
			return fmt.Sprintf("%s/%s/json/", baseURL, ip)
		},
		parse: parseIPAPI,
	}
}

// NewIPAPIComProvider queries ip-api.com.
func NewIPAPIComProvider(client *http.Client, baseURL string) *HTTPProvider {
	if baseURL == "" {
		baseURL = "http://ip-api.com"
	}
	return &HTTPProvider{
		name:   "ip-api.com",
		client: client,
		urlFor: func(ip string) string {
			return fmt.Sprintf("%s/json/%s", baseURL, ip)
		},
		parse: parseIPAPICom,
	}
}

// NewIPInfoProvider queries ipinfo.io.
func NewIPInfoProvider(client *http.Client, baseURL string) *HTTPProvider {
	if baseURL == "" {
		baseURL = "http://ipinfo.io"
	}
	return &HTTPProvider{
		name:   "ipinfo.io",
		client: client,
		urlFor: func(ip string) string {
			return fmt.Sprintf("%s/%s/json", baseURL, ip)
		},
		parse: parseIPInfo,
	}
}

func parseIPAPI(ip string, body []byte) (Location, error) {
	var data struct {
		IP          string  `json:"ip"`
		CountryCode string  `json:"country_code"`
		CountryName string  `json:"country_name"`
		Region      string  `json:"region"`
		City        string  `json:"city"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Timezone    string  `json:"timezone"`
		Org         string  `json:"org"`
		Error       bool    `json:"error"`
		Reason      string  `json:"reason"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Location{}, err
	}
	if data.Error {
		return Location{}, fmt.Errorf("geo: ipapi.co error: %s", data.Reason)
	}
	return Location{
		IP:          orDefault(data.IP, ip),
		CountryCode: data.CountryCode,
		CountryName: data.CountryName,
		Region:      data.Region,
		City:        data.City,
		Latitude:    data.Latitude,
		Longitude:   data.Longitude,
		Timezone:    data.Timezone,
		ISP:         data.Org,
		Provider:    "ipapi.co",
	}, nil
}

func parseIPAPICom(ip string, body []byte) (Location, error) {
	var data struct {
		Status      string  `json:"status"`
		Message     string  `json:"message"`
		Query       string  `json:"query"`
		CountryCode string  `json:"countryCode"`
		Country     string  `json:"country"`
		RegionName  string  `json:"regionName"`
		City        string  `json:"city"`
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		Timezone    string  `json:"timezone"`
		ISP         string  `json:"isp"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Location{}, err
	}
	if data.Status == "fail" {
		return Location{}, fmt.Errorf("geo: ip-api.com error: %s", data.Message)
	}
	return Location{
		IP:          orDefault(data.Query, ip),
		CountryCode: data.CountryCode,
		CountryName: data.Country,
		Region:      data.RegionName,
		City:        data.City,
		Latitude:    data.Lat,
		Longitude:   data.Lon,
		Timezone:    data.Timezone,
		ISP:         data.ISP,
		Provider:    "ip-api.com",
	}, nil
}

func parseIPInfo(ip string, body []byte) (Location, error) {
	var data struct {
		IP       string `json:"ip"`
		Country  string `json:"country"`
		Region   string `json:"region"`
		City     string `json:"city"`
		Loc      string `json:"loc"`
		Timezone string `json:"timezone"`
		Org      string `json:"org"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Location{}, err
	}

	loc := Location{
		IP:          orDefault(data.IP, ip),
		CountryCode: data.Country,
		CountryName: CountryName(data.Country),
		Region:      data.Region,
		City:        data.City,
		Timezone:    data.Timezone,
		ISP:         data.Org,
		Provider:    "ipinfo.io",
	}

	// ipinfo reports coordinates as a single "lat,lon" string.
	if parts := strings.SplitN(data.Loc, ",", 2); len(parts) == 2 {
		if lat, err := strconv.ParseFloat(parts[0], 64); err == nil {
			loc.Latitude = lat
		}
		if lon, err := strconv.ParseFloat(parts[1], 64); err == nil {
			loc.Longitude = lon
		}
	}
	return loc, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// LocalProvider answers lookups from a GeoLite2 database on disk. It is
// optional; when no database is configured the resolver goes straight to
// the HTTP providers.
type LocalProvider struct {
	db *geoip2.Reader
}

// OpenLocalProvider opens the GeoLite2 database at path. An empty path
// returns (nil, nil) so callers can treat the provider as absent.
func OpenLocalProvider(path string) (*LocalProvider, error) {
	if path == "" {
		return nil, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &LocalProvider{db: db}, nil
}

func (p *LocalProvider) Name() string { return "geolite2" }

func (p *LocalProvider) Lookup(_ context.Context, ip string) (Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, fmt.Errorf("geo: invalid ip %q", ip)
	}

	record, err := p.db.City(parsed)
	if err != nil {
		return Location{}, err
	}
	if record.Country.IsoCode == "" {
		return Location{}, fmt.Errorf("geo: no database entry for %s", ip)
	}

	loc := Location{
		IP:          ip,
		CountryCode: record.Country.IsoCode,
		CountryName: record.Country.Names["en"],
		City:        record.City.Names["en"],
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
		Timezone:    record.Location.TimeZone,
		Provider:    "geolite2",
	}
	if loc.CountryName == "" {
		loc.CountryName = CountryName(loc.CountryCode)
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, nil
}

// Close releases the underlying database handle.
func (p *LocalProvider) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
