package geo

import "sync"

// maxProviderFailures is the consecutive-failure count at which a provider
// is skipped during rotation. A later success resets the count.
const maxProviderFailures = 5

// Registry rotates lookups across providers so no single free-tier API
// absorbs all traffic, and sidelines providers that keep failing.
type Registry struct {
	mu        sync.Mutex
	providers []Provider
	index     int
	failures  map[string]int
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{
		providers: providers,
		failures:  make(map[string]int),
	}
}

// Next returns the next healthy provider in rotation. When every provider
// is sidelined it returns the first one anyway rather than giving up.
func (r *Registry) Next() Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.providers) == 0 {
		return nil
	}

	for i := 0; i < len(r.providers); i++ {
		idx := (r.index + i) % len(r.providers)
		p := r.providers[idx]
		if r.failures[p.Name()] < maxProviderFailures {
			r.index = (idx + 1) % len(r.providers)
			return p
		}
	}

	r.index = 0
	return r.providers[0]
}

// Size returns the number of registered providers.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.providers)
}

// RecordSuccess resets the failure count for a provider.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = 0
}

// RecordFailure increments the failure count for a provider.
func (r *Registry) RecordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name]++
}

// Failures returns a copy of the per-provider failure counts.
func (r *Registry) Failures() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.failures))
	for name, count := range r.failures {
		out[name] = count
	}
	return out
}
