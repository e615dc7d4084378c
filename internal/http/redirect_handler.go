package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"log/slog"

	"linkpulse/internal/clicks"
	"linkpulse/internal/links"
)

// RedirectAction handles GET /:code, the hot path. The click is enriched and
// persisted before the redirect is written; enrichment degrades internally so
// the only way it blocks the redirect is client disconnect.
func RedirectAction(ctx *cartridge.Context) error {
	code := ctx.Params("code")

	link, err := links.GetByShortCode(ctx.DBManager, code)
	if errors.Is(err, links.ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}
	if err != nil {
		ctx.Logger.Error("Failed to load link for redirect",
			slog.String("short_code", code),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load link"})
	}

	now := time.Now().UTC()
	if !link.CanRedirect(now) {
		return ctx.Status(fiber.StatusGone).JSON(fiber.Map{"error": "link is no longer available"})
	}

	click, err := pipeline.Ingest(ctx.Ctx.UserContext(), clicks.IngestInput{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		IP:        clientIP(ctx.Ctx),
		UserAgent: ctx.Get("User-Agent"),
		Referrer:  ctx.Get("Referer"),
		Now:       now,
	})
	if err != nil {
		// Context cancelled mid-enrichment; nothing to persist.
		ctx.Logger.Warn("Click ingestion aborted",
			slog.String("short_code", code),
			slog.Any("error", err))
	} else {
		if err := clicks.Insert(ctx.DBManager, ctx.Logger, click); err != nil {
			ctx.Logger.Error("Failed to persist click",
				slog.String("short_code", code),
				slog.Any("error", err))
		}
		if err := links.RecordClick(ctx.DBManager, ctx.Logger, link.ID, now); err != nil {
			ctx.Logger.Error("Failed to update link click counter",
				slog.String("short_code", code),
				slog.Any("error", err))
		}
	}

	return ctx.Redirect(link.TargetURL, fiber.StatusFound)
}
