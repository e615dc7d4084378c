package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"linkpulse/internal/config"
	"linkpulse/internal/http"
)

// publicCORSConfig is shared by the management API endpoints so dashboards on
// other origins can call them.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API.
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting only applies in production; in development and test it
	// would interfere with local tooling and the test suite.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Management API: 30 req/min per IP. Link creation and analytics are not
	// latency sensitive and this stops scripted code squatting.
	apiRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(30),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Redirects: 300 req/min per IP, generous because a single office NAT
	// can legitimately produce bursts of clicks.
	redirectRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(300),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	apiConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CustomMiddleware: []fiber.Handler{apiRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	redirectConfig := &cartridge.RouteConfig{
		CustomMiddleware: []fiber.Handler{redirectRateLimiter},
	}

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === MANAGEMENT API ROUTES ===
	srv.Post("/api/v1/links", http.CreateLinkAction, apiConfig)
	srv.Options("/api/v1/links", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, apiConfig)
	srv.Get("/api/v1/links/:code", http.LinkShowAction, apiConfig)
	srv.Get("/api/v1/links/:code/analytics", http.LinkAnalyticsAction, apiConfig)
	srv.Get("/api/v1/links/:code/qr", http.LinkQRCodeAction, apiConfig)
	srv.Post("/api/v1/links/:code/deactivate", http.DeactivateLinkAction, apiConfig)

	// === REDIRECT ROUTE ===
	// Registered last so the fixed paths above win over the catch-all.
	srv.Get("/:code", http.RedirectAction, redirectConfig)
}
