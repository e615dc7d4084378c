// Package analytics aggregates click records into multi-dimensional
// summaries. Summarize is a pure function over a snapshot of clicks and
// needs no locking of its own.
package analytics

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"linkpulse/internal/clicks"
)

// Summary is the full analytics rollup for a set of clicks.
type Summary struct {
	TotalClicks       int            `json:"total_clicks"`
	UniqueVisitors    int            `json:"unique_visitors"`
	ReturningVisitors int            `json:"returning_visitors"`
	DeviceBreakdown   map[string]int `json:"device_breakdown"`
	CountryBreakdown  map[string]int `json:"country_breakdown"`
	CityBreakdown     map[string]int `json:"city_breakdown"`
	PlatformBreakdown map[string]int `json:"platform_breakdown"`
	VideoSources      map[string]int `json:"video_sources"`
	ReferrerBreakdown map[string]int `json:"referrer_breakdown"`
	TimePatterns      TimePatterns   `json:"time_patterns"`
}

// TimePatterns captures when clicks happen. PeakHour is -1 and PeakDay and
// PeakDayPart empty when there are no clicks.
type TimePatterns struct {
	HourDistribution map[int]int    `json:"hour_distribution"`
	DayDistribution  map[string]int `json:"day_distribution"`
	PeakHour         int            `json:"peak_hour"`
	PeakDay          string         `json:"peak_day"`
	PeakDayPart      string         `json:"peak_day_part"`
}

// dayNames in ISO order, Monday first. Peak-day ties resolve to the
// earliest day in this order so summaries are reproducible.
var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Summarize computes the rollup in one pass. Empty input yields zero counts
// and empty maps, never nil maps.
func Summarize(records []clicks.Click) Summary {
	summary := Summary{
		DeviceBreakdown:   make(map[string]int),
		CountryBreakdown:  make(map[string]int),
		CityBreakdown:     make(map[string]int),
		PlatformBreakdown: make(map[string]int),
		VideoSources:      make(map[string]int),
		ReferrerBreakdown: make(map[string]int),
		TimePatterns: TimePatterns{
			HourDistribution: make(map[int]int),
			DayDistribution:  make(map[string]int),
			PeakHour:         -1,
		},
	}

	seenSessions := make(map[string]struct{})

	for _, click := range records {
		summary.TotalClicks++

		if click.SessionID != "" {
			seenSessions[click.SessionID] = struct{}{}
		}
		if click.IsReturningVisitor {
			summary.ReturningVisitors++
		}

		device := click.DeviceType
		if device == "" {
			device = clicks.UnknownDevice
		}
		summary.DeviceBreakdown[device]++

		country := click.CountryName
		if country == "" {
			country = clicks.UnknownCountry
		}
		summary.CountryBreakdown[country]++

		if click.City != "" {
			code := click.CountryCode
			if code == "" {
				code = "XX"
			}
			summary.CityBreakdown[click.City+", "+code]++
		}

		platform := click.Platform
		if platform == "" {
			platform = "Unknown"
		}
		summary.PlatformBreakdown[platform]++

		if click.VideoPlatform != "" && click.VideoID != "" {
			summary.VideoSources[click.VideoPlatform+":"+click.VideoID]++
		}

		refType := click.ReferrerType
		if refType == "" {
			refType = clicks.DirectReferrer
		}
		summary.ReferrerBreakdown[refType]++

		hour := click.ClickedAt.UTC().Hour()
		summary.TimePatterns.HourDistribution[hour]++
		summary.TimePatterns.DayDistribution[dayName(click.ClickedAt.UTC().Weekday())]++
	}

	summary.UniqueVisitors = len(seenSessions)
	summary.TimePatterns.PeakHour = peakHour(summary.TimePatterns.HourDistribution)
	summary.TimePatterns.PeakDay = peakDay(summary.TimePatterns.DayDistribution)
	if summary.TimePatterns.PeakHour >= 0 {
		summary.TimePatterns.PeakDayPart = DayPart(summary.TimePatterns.PeakHour)
	}
	return summary
}

// dayName maps Go's Sunday-first weekday to ISO naming.
func dayName(wd time.Weekday) string {
	return dayNames[(int(wd)+6)%7]
}

// peakHour returns the busiest hour, lowest hour winning ties.
func peakHour(hours map[int]int) int {
	peak, best := -1, 0
	for hour := 0; hour < 24; hour++ {
		if count := hours[hour]; count > best {
			peak, best = hour, count
		}
	}
	return peak
}

// peakDay returns the busiest day, earliest ISO day winning ties.
func peakDay(days map[string]int) string {
	peak, best := "", 0
	for _, name := range dayNames {
		if count := days[name]; count > best {
			peak, best = name, count
		}
	}
	return peak
}

// DayPart buckets an hour of day into night, morning, afternoon, or
// evening.
func DayPart(hour int) string {
	switch {
	case hour >= 0 && hour < 6:
		return "night"
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

var titleCaser = cases.Title(language.AmericanEnglish)

// DisplayDevice renders a device-type bucket for dashboards ("mobile" ->
// "Mobile", "tv" -> "TV").
func DisplayDevice(deviceType string) string {
	if deviceType == "tv" {
		return "TV"
	}
	return titleCaser.String(deviceType)
}
