// Package cache stores last-good values for resilience fallbacks.
//
// A Store holds the most recent successful result of a protected operation,
// keyed by resource, with a TTL bounding how stale a served substitute may
// be. Recording wraps an operation so successes refresh the store, and
// Fallback produces a resilience.FallbackConfig that serves the stored value
// when the live call fails:
//
//	store := cache.NewMemory[Quote]()
//	policy := resilience.NewPolicy[Quote]("quotes").
//		WithCircuitBreaker(resilience.CircuitBreakerConfig{}).
//		WithFallbackConfig(cache.Fallback(store, "quotes/EUR")).
//		Build()
//
//	quote, err := policy.Execute(ctx,
//		cache.Recording(store, "quotes/EUR", time.Minute, fetchQuote))
package cache
