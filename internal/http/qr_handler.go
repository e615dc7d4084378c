package http

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	qrcode "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"log/slog"

	"linkpulse/internal/config"
	"linkpulse/internal/links"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func isValidHex(s string) bool {
	return hexColorRe.MatchString(s)
}

// The standard writer closes its destination; a bytes.Buffer has no Close.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// LinkQRCodeAction handles GET /api/v1/links/:code/qr. Query params: shape
// (square|circle), fg (hex color), dl (1 forces download).
func LinkQRCodeAction(ctx *cartridge.Context) error {
	link, err := links.GetByShortCode(ctx.DBManager, ctx.Params("code"))
	if errors.Is(err, links.ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}
	if err != nil {
		ctx.Logger.Error("Failed to load link", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load link"})
	}

	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
		standard.WithBorderWidth(20),
		standard.WithBgTransparent(),
	}
	if ctx.Query("shape") == "circle" {
		opts = append(opts, standard.WithCircleShape())
	}
	if fg := ctx.Query("fg"); isValidHex(fg) {
		opts = append(opts, standard.WithFgColorRGBHex(fg))
	}

	qrc, err := qrcode.New(shortURL(config.GetConfig(), link.ShortCode))
	if err != nil {
		ctx.Logger.Error("Failed to generate QR code",
			slog.String("short_code", link.ShortCode),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate qr code"})
	}

	var buf bytes.Buffer
	writer := standard.NewWithWriter(nopCloser{&buf}, opts...)
	if err := qrc.Save(writer); err != nil {
		ctx.Logger.Error("Failed to render QR code",
			slog.String("short_code", link.ShortCode),
			slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render qr code"})
	}

	ctx.Ctx.Set(fiber.HeaderContentType, "image/png")
	ctx.Ctx.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	if ctx.Query("dl") == "1" {
		ctx.Ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+link.ShortCode+`-qr.png"`)
	}
	return ctx.Ctx.Send(buf.Bytes())
}
