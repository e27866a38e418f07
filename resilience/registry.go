package resilience

import (
	"sort"
	"sync"
)

// Registry caches circuit breakers by resource name so every call site
// protecting the same dependency shares one breaker's state. No two
// resources should share a breaker; no one resource should own two.
//
// A Registry is an explicit value: construct one at the application's
// composition root and inject it where breakers are needed.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	defaults CircuitBreakerConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*CircuitBreaker)}
}

// NewRegistryWithDefaults creates a registry whose Get constructs breakers
// from the given configuration.
func NewRegistryWithDefaults(defaults CircuitBreakerConfig) *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
		defaults: defaults,
	}
}

// GetOrCreate returns the breaker for name, constructing it from cfg on
// first use. A differing cfg for an existing name is ignored; the cached
// instance wins.
func (r *Registry) GetOrCreate(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[name]; ok {
		return cb
	}

	cfg.Name = name
	cb = NewCircuitBreaker(cfg)
	r.breakers[name] = cb
	return cb
}

// Get returns the breaker for name, constructing it from the registry
// defaults on first use.
func (r *Registry) Get(name string) *CircuitBreaker {
	return r.GetOrCreate(name, r.defaults)
}

// Lookup returns the breaker for name without creating one.
func (r *Registry) Lookup(name string) (*CircuitBreaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.breakers[name]
	return cb, ok
}

// Remove drops the breaker for name, if any.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.breakers, name)
}

// Names returns the registered resource names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered breakers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.breakers)
}

// AllStats returns a stats snapshot for every registered breaker.
func (r *Registry) AllStats() map[string]CircuitBreakerStats {
	r.mu.RLock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.RUnlock()

	stats := make(map[string]CircuitBreakerStats, len(breakers))
	for _, cb := range breakers {
		s := cb.Stats()
		stats[s.Name] = s
	}
	return stats
}

// ByState returns the breakers currently in the given state. Reading the
// state performs the lazy open to half-open transition where due.
func (r *Registry) ByState(state State) []*CircuitBreaker {
	r.mu.RLock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.RUnlock()

	matched := make([]*CircuitBreaker, 0, len(breakers))
	for _, cb := range breakers {
		if cb.State() == state {
			matched = append(matched, cb)
		}
	}
	return matched
}

// ResetAll forces every registered breaker closed and clears its counters.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.RUnlock()

	for _, cb := range breakers {
		cb.Reset()
	}
}
