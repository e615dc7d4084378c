package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"log/slog"

	"linkpulse/internal/analytics"
	"linkpulse/internal/clicks"
	"linkpulse/internal/config"
	"linkpulse/internal/links"
	"linkpulse/internal/referrers"
)

// LinkAnalyticsResponse pairs a link with the summary computed over its
// clicks, plus display labels keyed by the raw breakdown keys.
type LinkAnalyticsResponse struct {
	Link      LinkResponse      `json:"link"`
	Analytics analytics.Summary `json:"analytics"`
	Display   AnalyticsDisplay  `json:"display"`
}

// AnalyticsDisplay maps raw breakdown keys to dashboard-ready labels:
// device buckets to display casing, referrer keys to friendly names, and
// video sources to canonical watch URLs.
type AnalyticsDisplay struct {
	DeviceLabels   map[string]string `json:"device_labels"`
	ReferrerLabels map[string]string `json:"referrer_labels"`
	VideoURLs      map[string]string `json:"video_urls"`
}

func buildDisplay(summary analytics.Summary) AnalyticsDisplay {
	display := AnalyticsDisplay{
		DeviceLabels:   make(map[string]string, len(summary.DeviceBreakdown)),
		ReferrerLabels: make(map[string]string, len(summary.ReferrerBreakdown)),
		VideoURLs:      make(map[string]string, len(summary.VideoSources)),
	}
	for device := range summary.DeviceBreakdown {
		display.DeviceLabels[device] = analytics.DisplayDevice(device)
	}
	for ref := range summary.ReferrerBreakdown {
		display.ReferrerLabels[ref] = referrers.FriendlyName(ref)
	}
	for source := range summary.VideoSources {
		platform, videoID, ok := strings.Cut(source, ":")
		if !ok {
			continue
		}
		if url := referrers.VideoURL(platform, videoID); url != "" {
			display.VideoURLs[source] = url
		}
	}
	return display
}

// LinkAnalyticsAction handles GET /api/v1/links/:code/analytics.
func LinkAnalyticsAction(ctx *cartridge.Context) error {
	code := ctx.Params("code")

	link, err := links.GetByShortCode(ctx.DBManager, code)
	if errors.Is(err, links.ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}
	if err != nil {
		ctx.Logger.Error("Failed to load link", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load link"})
	}

	records, err := clicks.QueryByShortCode(ctx.DBManager, code)
	if err != nil {
		ctx.Logger.Error("Failed to load clicks",
			slog.String("short_code", code),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load analytics"})
	}

	summary := analytics.Summarize(records)
	return ctx.JSON(LinkAnalyticsResponse{
		Link:      newLinkResponse(config.GetConfig(), link),
		Analytics: summary,
		Display:   buildDisplay(summary),
	})
}
