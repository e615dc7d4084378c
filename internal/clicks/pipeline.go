package clicks

import (
	"context"
	"log/slog"
	"time"

	"linkpulse/internal/geo"
	"linkpulse/internal/pkg/async"
	"linkpulse/internal/referrers"
	"linkpulse/internal/sessions"
	"linkpulse/internal/useragent"
)

// IngestInput is what the redirect boundary hands the pipeline for one
// click. The pipeline does no HTTP parsing of its own.
type IngestInput struct {
	LinkID    uint
	ShortCode string
	IP        string
	UserAgent string
	Referrer  string
	Now       time.Time
}

// Pipeline assembles one Click per redirect. The four enrichment steps
// (device, geo, referrer, session) have no data dependency on each other
// and run concurrently so the redirect only waits for the slowest one,
// which in practice is the geolocation network round trip.
type Pipeline struct {
	resolver *geo.Resolver
	tracker  *sessions.Tracker
	pool     *async.Pool
	logger   *slog.Logger
}

func NewPipeline(resolver *geo.Resolver, tracker *sessions.Tracker, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		tracker:  tracker,
		pool:     async.NewPool(4),
		logger:   logger,
	}
}

type referrerResult struct {
	domain   string
	category string
	video    referrers.VideoRef
	hasVideo bool
}

type sessionResult struct {
	id          string
	isReturning bool
	info        sessions.ClickInfo
}

// Ingest enriches one redirect into a Click. Each sub-resolver degrades to
// its sentinel internally, so Ingest never fails for valid input; the only
// error it returns is context cancellation, in which case the partially
// built record must not be persisted.
func (p *Pipeline) Ingest(ctx context.Context, input IngestInput) (*Click, error) {
	tasks := []async.Task{
		{
			Name: "device",
			Execute: func() (interface{}, error) {
				return useragent.Classify(input.UserAgent), nil
			},
		},
		{
			Name: "geo",
			Execute: func() (interface{}, error) {
				return p.resolver.Resolve(ctx, input.IP), nil
			},
		},
		{
			Name: "referrer",
			Execute: func() (interface{}, error) {
				domain, category := referrers.Categorize(input.Referrer)
				video, hasVideo := referrers.AttributeVideo(input.Referrer)
				return referrerResult{domain: domain, category: category, video: video, hasVideo: hasVideo}, nil
			},
		},
		{
			Name: "session",
			Execute: func() (interface{}, error) {
				id := p.tracker.SessionID(input.IP, input.UserAgent, input.Now)
				isReturning := p.tracker.Seen(id, input.ShortCode)
				info := p.tracker.TrackClick(id, input.ShortCode, input.Now)
				return sessionResult{id: id, isReturning: isReturning, info: info}, nil
			},
		},
	}

	results := p.pool.Execute(ctx, tasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	click := &Click{
		LinkID:       input.LinkID,
		ShortCode:    input.ShortCode,
		IPAddress:    input.IP,
		UserAgent:    input.UserAgent,
		Referrer:     input.Referrer,
		ReferrerType: DirectReferrer,
		DeviceType:   UnknownDevice,
		CountryName:  UnknownCountry,
		ClickedAt:    input.Now,
	}

	if r, ok := results["device"]; ok {
		device := r.Data.(useragent.Device)
		click.DeviceType = device.Type
		click.DeviceBrand = device.Brand
		click.DeviceModel = device.Model
		click.Browser = device.Browser
		click.BrowserVersion = device.BrowserVersion
		click.OS = device.OS
		click.OSVersion = device.OSVersion
		click.Platform = device.Platform
		click.IsBot = device.Bot
	}

	if r, ok := results["geo"]; ok {
		loc := r.Data.(geo.Location)
		click.CountryCode = loc.CountryCode
		click.CountryName = loc.CountryName
		click.Region = loc.Region
		click.City = loc.City
		click.Latitude = loc.Latitude
		click.Longitude = loc.Longitude
		click.Timezone = loc.Timezone
		click.ISP = loc.ISP
		click.GeoProvider = loc.Provider
	}

	if r, ok := results["referrer"]; ok {
		ref := r.Data.(referrerResult)
		click.ReferrerDomain = ref.domain
		click.ReferrerType = ref.category
		if ref.hasVideo {
			click.VideoPlatform = ref.video.Platform
			click.VideoID = ref.video.VideoID
		}
	}

	if r, ok := results["session"]; ok {
		session := r.Data.(sessionResult)
		click.SessionID = session.id
		click.IsReturningVisitor = session.isReturning
	}

	return click, nil
}
