package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"linkpulse/internal/clicks"
)

func click(mutate func(c *clicks.Click)) clicks.Click {
	c := clicks.Click{
		LinkID:       1,
		ShortCode:    "xK9mPq",
		DeviceType:   "desktop",
		CountryName:  "United States",
		CountryCode:  "US",
		Platform:     "Windows 10",
		ReferrerType: clicks.DirectReferrer,
		SessionID:    "aaaa000011112222",
		ClickedAt:    time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), // a Monday
	}
	if mutate != nil {
		mutate(&c)
	}
	return c
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalClicks)
	assert.Zero(t, s.UniqueVisitors)
	assert.Zero(t, s.ReturningVisitors)
	assert.Empty(t, s.DeviceBreakdown)
	assert.Empty(t, s.CountryBreakdown)
	assert.Empty(t, s.CityBreakdown)
	assert.Empty(t, s.VideoSources)
	assert.Empty(t, s.ReferrerBreakdown)
	assert.Empty(t, s.TimePatterns.HourDistribution)
	assert.Equal(t, -1, s.TimePatterns.PeakHour)
	assert.Equal(t, "", s.TimePatterns.PeakDay)
	assert.Equal(t, "", s.TimePatterns.PeakDayPart)
	assert.NotNil(t, s.DeviceBreakdown)
}

func TestSummarizeCounts(t *testing.T) {
	records := []clicks.Click{
		click(nil),
		click(func(c *clicks.Click) {
			c.SessionID = "bbbb000011112222"
			c.DeviceType = "mobile"
			c.IsReturningVisitor = true
		}),
		click(func(c *clicks.Click) {
			c.SessionID = "aaaa000011112222" // repeat visitor
			c.City = "Berlin"
			c.CountryCode = "DE"
			c.CountryName = "Germany"
			c.ReferrerType = "youtube"
			c.VideoPlatform = "youtube"
			c.VideoID = "dQw4w9WgXcQ"
		}),
	}

	s := Summarize(records)

	assert.Equal(t, 3, s.TotalClicks)
	assert.Equal(t, 2, s.UniqueVisitors)
	assert.Equal(t, 1, s.ReturningVisitors)
	assert.Equal(t, 2, s.DeviceBreakdown["desktop"])
	assert.Equal(t, 1, s.DeviceBreakdown["mobile"])
	assert.Equal(t, 2, s.CountryBreakdown["United States"])
	assert.Equal(t, 1, s.CountryBreakdown["Germany"])
	assert.Equal(t, 1, s.CityBreakdown["Berlin, DE"])
	assert.Equal(t, 1, s.VideoSources["youtube:dQw4w9WgXcQ"])
	assert.Equal(t, 2, s.ReferrerBreakdown[clicks.DirectReferrer])
	assert.Equal(t, 1, s.ReferrerBreakdown["youtube"])
	assert.Equal(t, 3, s.PlatformBreakdown["Windows 10"])
}

func TestSummarizeSentinels(t *testing.T) {
	records := []clicks.Click{
		click(func(c *clicks.Click) {
			c.DeviceType = ""
			c.CountryName = ""
			c.Platform = ""
			c.ReferrerType = ""
			c.SessionID = ""
			c.City = "Lagos"
			c.CountryCode = ""
		}),
	}

	s := Summarize(records)

	assert.Equal(t, 1, s.DeviceBreakdown[clicks.UnknownDevice])
	assert.Equal(t, 1, s.CountryBreakdown[clicks.UnknownCountry])
	assert.Equal(t, 1, s.PlatformBreakdown["Unknown"])
	assert.Equal(t, 1, s.ReferrerBreakdown[clicks.DirectReferrer])
	assert.Equal(t, 1, s.CityBreakdown["Lagos, XX"])
	assert.Zero(t, s.UniqueVisitors)
}

func TestTimePatterns(t *testing.T) {
	monday14 := time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)
	tuesday9 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	records := []clicks.Click{
		click(func(c *clicks.Click) { c.ClickedAt = monday14 }),
		click(func(c *clicks.Click) { c.ClickedAt = monday14.Add(10 * time.Minute) }),
		click(func(c *clicks.Click) { c.ClickedAt = tuesday9 }),
	}

	s := Summarize(records)

	assert.Equal(t, 2, s.TimePatterns.HourDistribution[14])
	assert.Equal(t, 1, s.TimePatterns.HourDistribution[9])
	assert.Equal(t, 2, s.TimePatterns.DayDistribution["Monday"])
	assert.Equal(t, 1, s.TimePatterns.DayDistribution["Tuesday"])
	assert.Equal(t, 14, s.TimePatterns.PeakHour)
	assert.Equal(t, "Monday", s.TimePatterns.PeakDay)
	assert.Equal(t, "afternoon", s.TimePatterns.PeakDayPart)
}

func TestPeakTieBreaksAreDeterministic(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC)

	records := []clicks.Click{
		click(func(c *clicks.Click) { c.ClickedAt = sunday }),
		click(func(c *clicks.Click) { c.ClickedAt = monday }),
	}

	s := Summarize(records)

	// One click each: lowest hour and earliest ISO day win.
	assert.Equal(t, 3, s.TimePatterns.PeakHour)
	assert.Equal(t, "Monday", s.TimePatterns.PeakDay)
}

func TestDayPart(t *testing.T) {
	assert.Equal(t, "night", DayPart(0))
	assert.Equal(t, "night", DayPart(5))
	assert.Equal(t, "morning", DayPart(6))
	assert.Equal(t, "afternoon", DayPart(12))
	assert.Equal(t, "evening", DayPart(18))
	assert.Equal(t, "evening", DayPart(23))
}

func TestDisplayDevice(t *testing.T) {
	assert.Equal(t, "Mobile", DisplayDevice("mobile"))
	assert.Equal(t, "TV", DisplayDevice("tv"))
	assert.Equal(t, "Unknown", DisplayDevice("unknown"))
}
