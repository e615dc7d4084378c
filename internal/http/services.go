// Package http contains the HTTP actions mounted by the router.
package http

import (
	"log/slog"
	nethttp "net/http"
	"time"

	"linkpulse/internal/clicks"
	"linkpulse/internal/config"
	"linkpulse/internal/geo"
	"linkpulse/internal/sessions"
	"linkpulse/internal/shortcode"
)

// Handler-level services, wired once at startup. Handlers are package-level
// functions so the services live here rather than on a struct.
var (
	generator *shortcode.Generator
	tracker   *sessions.Tracker
	resolver  *geo.Resolver
	pipeline  *clicks.Pipeline
)

// InitServices wires the code generator, session tracker, geolocation
// resolver, and click pipeline used by the actions. Must be called before
// mounting routes.
func InitServices(cfg *config.Config, logger *slog.Logger) {
	generator = shortcode.NewGenerator(cfg.CodeLength, cfg.CodeMaxAttempts)

	client := &nethttp.Client{
		Timeout: time.Duration(cfg.GeoProviderTimeoutSeconds) * time.Second,
	}
	registry := geo.NewRegistry(
		geo.NewIPAPIProvider(client, ""),
		geo.NewIPAPIComProvider(client, ""),
		geo.NewIPInfoProvider(client, ""),
	)

	local, err := geo.OpenLocalProvider(cfg.GeoDBPath)
	if err != nil {
		logger.Warn("Failed to open local geolocation database, using HTTP providers only",
			slog.String("path", cfg.GeoDBPath),
			slog.Any("error", err))
		local = nil
	}

	resolver = geo.NewResolver(registry, local, logger, geo.ResolverOptions{
		CacheSize: cfg.GeoCacheSize,
		CacheTTL:  time.Duration(cfg.GeoCacheTTLHours) * time.Hour,
		Timeout:   time.Duration(cfg.GeoProviderTimeoutSeconds) * time.Second,
	})

	tracker = sessions.NewTracker(
		time.Duration(cfg.SessionWindowMinutes)*time.Minute,
		time.Duration(cfg.SessionRetentionHours)*time.Hour,
	)

	pipeline = clicks.NewPipeline(resolver, tracker, logger)
}

// SessionTracker exposes the tracker so the job scheduler can sweep expired
// sessions on the same instance the pipeline writes to.
func SessionTracker() *sessions.Tracker {
	return tracker
}
