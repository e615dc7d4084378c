// Package referrers parses Referer headers into traffic-source dimensions:
// a category for aggregation, a friendly display name, and video attribution
// for clicks arriving from video platforms.
package referrers

import (
	"net/url"
	"strings"

	"go.elara.ws/pcre"
)

// Referrer categories used in analytics breakdowns.
const (
	CategoryDirect  = "direct"
	CategorySearch  = "search"
	CategoryEmail   = "email"
	CategoryUnknown = "unknown"
)

// socialPlatforms maps referrer domains to platform names. Checked in order;
// matching is by substring so l.facebook.com and old.reddit.com resolve too.
var socialPlatforms = []struct {
	domain   string
	platform string
}{
	{"facebook.com", "facebook"},
	{"fb.com", "facebook"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"t.co", "twitter"},
	{"linkedin.com", "linkedin"},
	{"instagram.com", "instagram"},
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"tiktok.com", "tiktok"},
	{"reddit.com", "reddit"},
	{"pinterest.com", "pinterest"},
	{"whatsapp.com", "whatsapp"},
	{"telegram.org", "telegram"},
	{"discord.com", "discord"},
}

var searchEngines = []string{"google", "bing", "yahoo", "duckduckgo", "baidu", "yandex"}

var emailClients = []string{"mail.", "outlook", "gmail", "yahoo.com", "protonmail"}

// Categorize extracts the referrer domain and assigns a traffic-source
// category. An empty referrer is direct traffic; an unparseable one is
// unknown. Domains outside the social, search, and email groups categorize
// as their own bare domain.
func Categorize(referrer string) (domain, category string) {
	if referrer == "" {
		return "", CategoryDirect
	}

	parsed, err := url.Parse(referrer)
	if err != nil {
		return "", CategoryUnknown
	}
	domain = strings.ToLower(parsed.Host)
	if domain == "" {
		return "", CategoryDirect
	}

	for _, entry := range socialPlatforms {
		if strings.Contains(domain, entry.domain) {
			return domain, entry.platform
		}
	}
	for _, engine := range searchEngines {
		if strings.Contains(domain, engine) {
			return domain, CategorySearch
		}
	}
	for _, client := range emailClients {
		if strings.Contains(domain, client) {
			return domain, CategoryEmail
		}
	}
	return domain, domain
}

// VideoRef identifies the video a click arrived from.
type VideoRef struct {
	Platform string
	VideoID  string
}

// Video URL patterns per platform. First match wins, so the query-parameter
// YouTube form precedes the path-based forms.
var videoPatterns = []struct {
	platform string
	re       *pcre.Regexp
}{
	{"youtube", pcre.MustCompile(`youtube\.com/watch\?(?:[^#]*&)?v=([A-Za-z0-9_-]+)`)},
	{"youtube", pcre.MustCompile(`youtu\.be/([A-Za-z0-9_-]+)`)},
	{"youtube", pcre.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]+)`)},
	{"youtube", pcre.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]+)`)},
	{"tiktok", pcre.MustCompile(`tiktok\.com/@[\w.-]+/video/(\d+)`)},
	{"tiktok", pcre.MustCompile(`vm\.tiktok\.com/([A-Za-z0-9]+)`)},
	{"tiktok", pcre.MustCompile(`vt\.tiktok\.com/([A-Za-z0-9]+)`)},
	{"instagram", pcre.MustCompile(`instagram\.com/reel/([A-Za-z0-9_-]+)`)},
	{"instagram", pcre.MustCompile(`instagram\.com/p/([A-Za-z0-9_-]+)`)},
	{"instagram", pcre.MustCompile(`instagram\.com/tv/([A-Za-z0-9_-]+)`)},
	{"twitter", pcre.MustCompile(`twitter\.com/\w+/status/(\d+)`)},
	{"twitter", pcre.MustCompile(`x\.com/\w+/status/(\d+)`)},
	{"linkedin", pcre.MustCompile(`linkedin\.com/posts/[\w-]+_([a-zA-Z0-9]+)`)},
	{"linkedin", pcre.MustCompile(`linkedin\.com/feed/update/urn:li:activity:(\d+)`)},
}

// AttributeVideo extracts the video platform and ID from a referrer URL.
// It returns false when the referrer is not a recognized video URL.
func AttributeVideo(referrer string) (VideoRef, bool) {
	if referrer == "" {
		return VideoRef{}, false
	}
	for _, entry := range videoPatterns {
		if m := entry.re.FindStringSubmatch(referrer); len(m) > 1 && m[1] != "" {
			return VideoRef{Platform: entry.platform, VideoID: m[1]}, true
		}
	}
	return VideoRef{}, false
}

// VideoURL reconstructs a canonical video URL from a platform and ID.
func VideoURL(platform, videoID string) string {
	switch platform {
	case "youtube":
		return "https://youtube.com/watch?v=" + videoID
	case "tiktok":
		return "https://tiktok.com/video/" + videoID
	case "instagram":
		return "https://instagram.com/p/" + videoID
	case "twitter":
		return "https://twitter.com/i/status/" + videoID
	case "linkedin":
		return "https://linkedin.com/feed/update/urn:li:activity:" + videoID
	}
	return ""
}
