package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"log/slog"

	"linkpulse/internal/config"
	"linkpulse/internal/links"
)

// CreateLinkRequest is the payload for POST /api/v1/links.
type CreateLinkRequest struct {
	TargetURL  string     `json:"target_url"`
	Title      string     `json:"title"`
	CustomCode string     `json:"custom_code"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// LinkResponse is the JSON representation of a link.
type LinkResponse struct {
	ID            uint       `json:"id"`
	ShortCode     string     `json:"short_code"`
	ShortURL      string     `json:"short_url"`
	TargetURL     string     `json:"target_url"`
	Title         string     `json:"title,omitempty"`
	Domain        string     `json:"domain"`
	IsActive      bool       `json:"is_active"`
	ClickCount    int64      `json:"click_count"`
	LastClickedAt *time.Time `json:"last_clicked_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newLinkResponse(cfg *config.Config, link *links.Link) LinkResponse {
	return LinkResponse{
		ID:            link.ID,
		ShortCode:     link.ShortCode,
		ShortURL:      shortURL(cfg, link.ShortCode),
		TargetURL:     link.TargetURL,
		Title:         link.Title,
		Domain:        link.Domain,
		IsActive:      link.IsActive,
		ClickCount:    link.ClickCount,
		LastClickedAt: link.LastClickedAt,
		ExpiresAt:     link.ExpiresAt,
		CreatedAt:     link.CreatedAt,
	}
}

// shortURL builds the public URL for a code from the configured domain.
func shortURL(cfg *config.Config, code string) string {
	scheme := "http"
	if cfg.IsProduction() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Domain, code)
}

// CreateLinkAction handles POST /api/v1/links.
func CreateLinkAction(ctx *cartridge.Context) error {
	var req CreateLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	link, err := links.CreateLink(ctx.DBManager, ctx.Logger, generator, &links.CreateLinkInput{
		TargetURL:  req.TargetURL,
		Title:      req.Title,
		CustomCode: req.CustomCode,
		ExpiresAt:  req.ExpiresAt,
	})
	switch {
	case errors.Is(err, links.ErrInvalidURL):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_url must be an absolute http or https URL",
		})
	case errors.Is(err, links.ErrInvalidCode):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "custom_code must be 4-8 alphanumeric characters",
		})
	case errors.Is(err, links.ErrCodeTaken):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "custom_code is already in use",
		})
	case err != nil:
		ctx.Logger.Error("Failed to create link", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create link",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(newLinkResponse(config.GetConfig(), link))
}

// LinkShowAction handles GET /api/v1/links/:code.
func LinkShowAction(ctx *cartridge.Context) error {
	link, err := links.GetByShortCode(ctx.DBManager, ctx.Params("code"))
	if errors.Is(err, links.ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}
	if err != nil {
		ctx.Logger.Error("Failed to load link", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load link"})
	}

	return ctx.JSON(newLinkResponse(config.GetConfig(), link))
}

// DeactivateLinkAction handles POST /api/v1/links/:code/deactivate.
// Deactivation is permanent: the code stays reserved and redirects answer 410.
func DeactivateLinkAction(ctx *cartridge.Context) error {
	link, err := links.GetByShortCode(ctx.DBManager, ctx.Params("code"))
	if errors.Is(err, links.ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}
	if err != nil {
		ctx.Logger.Error("Failed to load link", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load link"})
	}

	if err := links.Deactivate(ctx.DBManager, ctx.Logger, link.ID); err != nil {
		ctx.Logger.Error("Failed to deactivate link",
			slog.String("short_code", link.ShortCode),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to deactivate link"})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
