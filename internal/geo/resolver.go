package geo

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 10000
	defaultCacheTTL  = 24 * time.Hour
	defaultTimeout   = 2 * time.Second
)

// ResolverOptions tune caching and per-provider timeouts. Zero values fall
// back to the defaults above.
type ResolverOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	Timeout   time.Duration
}

// Resolver answers IP-to-location queries. Order of precedence: reserved
// address short-circuit, TTL cache, local database, provider rotation, and
// finally the fallback record. Resolve never returns an error because click
// ingestion must not fail on geography.
type Resolver struct {
	registry *Registry
	local    *LocalProvider
	cache    *expirable.LRU[string, Location]
	timeout  time.Duration
	logger   *slog.Logger
}

func NewResolver(registry *Registry, local *LocalProvider, logger *slog.Logger, opts ResolverOptions) *Resolver {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Resolver{
		registry: registry,
		local:    local,
		cache:    expirable.NewLRU[string, Location](opts.CacheSize, nil, opts.CacheTTL),
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

// Resolve returns the location for ip. Failed lookups yield the fallback
// record, which is cached like any other result so a flapping provider does
// not get hammered for the same address.
func (r *Resolver) Resolve(ctx context.Context, ip string) Location {
	if IsReserved(ip) {
		return Fallback(ip)
	}

	if loc, ok := r.cache.Get(ip); ok {
		return loc
	}

	if r.local != nil {
		if loc, err := r.local.Lookup(ctx, ip); err == nil {
			r.cache.Add(ip, loc)
			return loc
		}
	}

	attempts := r.registry.Size()
	for i := 0; i < attempts; i++ {
		provider := r.registry.Next()
		if provider == nil {
			break
		}

		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		loc, err := provider.Lookup(lookupCtx, ip)
		cancel()

		if err != nil {
			// A cancelled parent context means the client went away, not
			// that the provider is unhealthy: leave its failure counter
			// alone and return the fallback without caching it.
			if ctx.Err() != nil {
				return Fallback(ip)
			}
			r.registry.RecordFailure(provider.Name())
			r.logger.Warn("geo provider lookup failed",
				slog.String("provider", provider.Name()),
				slog.String("ip", ip),
				slog.Any("error", err))
			continue
		}

		r.registry.RecordSuccess(provider.Name())
		r.cache.Add(ip, loc)
		return loc
	}

	loc := Fallback(ip)
	r.cache.Add(ip, loc)
	return loc
}

// CacheLen returns the number of cached locations, for monitoring.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}
