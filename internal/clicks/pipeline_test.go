package clicks_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpulse/internal/clicks"
	"linkpulse/internal/geo"
	"linkpulse/internal/sessions"
)

const testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, geoHandler http.HandlerFunc) *clicks.Pipeline {
	t.Helper()

	srv := httptest.NewServer(geoHandler)
	t.Cleanup(srv.Close)

	registry := geo.NewRegistry(geo.NewIPAPIProvider(srv.Client(), srv.URL))
	resolver := geo.NewResolver(registry, nil, quietLogger(), geo.ResolverOptions{})
	tracker := sessions.NewTracker(30*time.Minute, 24*time.Hour)
	return clicks.NewPipeline(resolver, tracker, quietLogger())
}

func TestIngestEnrichesAllDimensions(t *testing.T) {
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.5","country_code":"DE","country_name":"Germany","city":"Berlin","region":"Berlin","latitude":52.52,"longitude":13.4,"timezone":"Europe/Berlin"}`))
	})

	now := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	click, err := p.Ingest(context.Background(), clicks.IngestInput{
		LinkID:    7,
		ShortCode: "xK9mPq",
		IP:        "203.0.113.5",
		UserAgent: testUA,
		Referrer:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Now:       now,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), click.LinkID)
	assert.Equal(t, "xK9mPq", click.ShortCode)
	assert.Equal(t, now, click.ClickedAt)

	// Device dimensions.
	assert.Equal(t, "desktop", click.DeviceType)
	assert.Equal(t, "Chrome", click.Browser)
	assert.False(t, click.IsBot)

	// Geo dimensions.
	assert.Equal(t, "DE", click.CountryCode)
	assert.Equal(t, "Germany", click.CountryName)
	assert.Equal(t, "Berlin", click.City)
	assert.Equal(t, "ipapi.co", click.GeoProvider)

	// Referrer dimensions.
	assert.Equal(t, "www.youtube.com", click.ReferrerDomain)
	assert.Equal(t, "youtube", click.ReferrerType)
	assert.Equal(t, "youtube", click.VideoPlatform)
	assert.Equal(t, "dQw4w9WgXcQ", click.VideoID)

	// Session dimensions.
	assert.Len(t, click.SessionID, 16)
	assert.False(t, click.IsReturningVisitor)
}

func TestIngestMarksReturningVisitor(t *testing.T) {
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_code":"US","country_name":"United States"}`))
	})

	now := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	input := clicks.IngestInput{
		LinkID:    1,
		ShortCode: "xK9mPq",
		IP:        "203.0.113.9",
		UserAgent: testUA,
		Now:       now,
	}

	first, err := p.Ingest(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.IsReturningVisitor)

	input.Now = now.Add(5 * time.Minute)
	second, err := p.Ingest(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.IsReturningVisitor)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestIngestDegradesToSentinels(t *testing.T) {
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	click, err := p.Ingest(context.Background(), clicks.IngestInput{
		LinkID:    2,
		ShortCode: "aB3xY9",
		IP:        "203.0.113.77",
		UserAgent: "",
		Referrer:  "",
		Now:       time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, clicks.UnknownDevice, click.DeviceType)
	assert.Equal(t, clicks.UnknownCountry, click.CountryName)
	assert.Equal(t, geo.FallbackProvider, click.GeoProvider)
	assert.Equal(t, clicks.DirectReferrer, click.ReferrerType)
	assert.Empty(t, click.VideoPlatform)
	assert.NotEmpty(t, click.SessionID)
}

func TestIngestCancelledContext(t *testing.T) {
	p := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, clicks.IngestInput{
		LinkID:    3,
		ShortCode: "qW4eRt",
		IP:        "203.0.113.1",
		UserAgent: testUA,
		Now:       time.Now().UTC(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
