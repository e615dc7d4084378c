// Package useragent classifies raw User-Agent strings into the device
// dimensions the analytics pipeline aggregates on.
package useragent

import (
	"strings"
	"sync"

	"github.com/mssola/useragent"
	"go.elara.ws/pcre"
)

// Device type values. These are stored on clicks and surfaced in analytics
// breakdowns, so they are part of the reporting contract.
const (
	DeviceBot     = "bot"
	DeviceTV      = "tv"
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Device is the classification of a single User-Agent string.
type Device struct {
	UserAgent      string
	Type           string
	Brand          string
	Model          string
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	Platform       string
	Bot            bool
}

// Pattern groups checked against the lowercased User-Agent. Order matters:
// TV strings often contain "android", and tablet strings often contain
// "mobile", so the more specific groups run first.
var (
	botPatterns = []string{
		`bot`, `crawler`, `spider`, `scraper`, `fetcher`,
		`googlebot`, `bingbot`, `facebookexternalhit`,
		`twitterbot`, `linkedinbot`, `slackbot`,
		`whatsapp`, `telegram`, `curl`, `wget`,
		`postman`, `insomnia`, `httpie`,
	}
	tvPatterns = []string{
		`smart-tv`, `smarttv`, `googletv`, `appletv`, `hbbtv`,
		`roku`, `chromecast`, `android tv`, `fire tv`, `netcast`,
	}
	tabletPatterns = []string{
		`ipad`, `tablet`, `kindle`, `nook`, `playbook`,
	}
	mobilePatterns = []string{
		`mobile`, `android`, `iphone`, `ipod`, `blackberry`,
		`windows phone`, `symbian`, `palm`, `webos`,
	}
	desktopPatterns = []string{
		`windows nt`, `macintosh`, `x11; linux`, `ubuntu`,
		`debian`, `fedora`, `cros`,
	}
)

// brandPatterns maps hardware vendors to the markers that identify them.
// Checked in order so Apple wins over generic matches.
var brandPatterns = []struct {
	brand    string
	patterns []string
}{
	{"Apple", []string{`iphone`, `ipad`, `ipod`, `macintosh`}},
	{"Samsung", []string{`samsung`, `galaxy`, `sm-`}},
	{"Google", []string{`pixel`, `nexus`, `chromebook`}},
	{"Microsoft", []string{`windows phone`, `surface`, `xbox`}},
	{"Amazon", []string{`kindle`, `fire tv`, `silk`}},
	{"Sony", []string{`playstation`, `xperia`}},
	{"Xiaomi", []string{`xiaomi`, `redmi`, `mi `}},
	{"Huawei", []string{`huawei`, `honor`}},
	{"OnePlus", []string{`oneplus`}},
	{"Motorola", []string{`motorola`, `moto `}},
	{"LG", []string{`lg-`, `lge`}},
	{"Nokia", []string{`nokia`}},
}

// regexCache compiles patterns once and shares them across requests.
type regexCache struct {
	mu       sync.RWMutex
	compiled map[string]*pcre.Regexp
}

func (rc *regexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mu.RLock()
	if re, ok := rc.compiled[pattern]; ok {
		rc.mu.RUnlock()
		return re, nil
	}
	rc.mu.RUnlock()

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if re, ok := rc.compiled[pattern]; ok {
		return re, nil
	}
	re, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = re
	return re, nil
}

var cache = &regexCache{compiled: make(map[string]*pcre.Regexp)}

func matchAny(ua string, patterns []string) bool {
	for _, pattern := range patterns {
		re, err := cache.get(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(ua) {
			return true
		}
	}
	return false
}

// Classify parses a raw User-Agent string. An empty string yields the
// unknown device record rather than an error: click ingestion must never
// fail on a missing header.
func Classify(rawUA string) Device {
	if strings.TrimSpace(rawUA) == "" {
		return unknownDevice("")
	}

	parsed := useragent.New(rawUA)
	lower := strings.ToLower(rawUA)

	browser, browserVersion := parsed.Browser()
	if browser == "" {
		browser = "Unknown"
	}
	osInfo := parsed.OSInfo()
	osName := osInfo.Name
	if osName == "" {
		osName = "Unknown"
	}

	d := Device{
		UserAgent:      rawUA,
		Browser:        browser,
		BrowserVersion: browserVersion,
		OS:             osName,
		OSVersion:      osInfo.Version,
		Platform:       platformLabel(osName, osInfo.Version),
	}

	if parsed.Bot() || matchAny(lower, botPatterns) {
		d.Type = DeviceBot
		d.Bot = true
		return d
	}

	d.Type = detectType(lower, osName)
	d.Brand = detectBrand(lower)
	d.Model = parsed.Model()
	return d
}

// detectType walks the pattern groups from most to least specific and falls
// back to inferring from the operating system when nothing matches.
func detectType(lower, osName string) string {
	switch {
	case matchAny(lower, tvPatterns):
		return DeviceTV
	case matchAny(lower, tabletPatterns):
		return DeviceTablet
	case matchAny(lower, mobilePatterns):
		return DeviceMobile
	case matchAny(lower, desktopPatterns):
		return DeviceDesktop
	}

	os := strings.ToLower(osName)
	switch {
	case strings.Contains(os, "android") || strings.Contains(os, "ios"):
		return DeviceMobile
	case strings.Contains(os, "windows") || strings.Contains(os, "mac") || strings.Contains(os, "linux"):
		return DeviceDesktop
	}
	return DeviceUnknown
}

func detectBrand(lower string) string {
	for _, entry := range brandPatterns {
		if matchAny(lower, entry.patterns) {
			return entry.brand
		}
	}
	return ""
}

func platformLabel(osName, osVersion string) string {
	if osName == "Unknown" {
		return "Unknown"
	}
	if osVersion == "" {
		return osName
	}
	return osName + " " + osVersion
}

func unknownDevice(rawUA string) Device {
	return Device{
		UserAgent: rawUA,
		Type:      DeviceUnknown,
		Browser:   "Unknown",
		OS:        "Unknown",
		Platform:  "Unknown",
	}
}
