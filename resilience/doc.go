// Package resilience provides composable fault-tolerance patterns for
// protecting outbound calls.
//
// The package implements common resilience patterns that help callers handle
// failing dependencies gracefully. The patterns can be used on their own or
// composed into a single Policy per logical operation.
//
// # Patterns
//
//   - Circuit Breaker: Stops calling a resource whose failures reach a
//     threshold within a sliding window, then cautiously probes recovery
//     after a reset timeout.
//
//   - Bulkhead: Caps in-flight operations per resource, queueing excess
//     callers in FIFO order up to a bounded queue and rejecting the rest.
//
//   - Retry: Re-attempts failed operations with fixed or exponential
//     backoff, aborting early on non-retryable errors.
//
//   - Timeout: Bounds each attempt, cancelling the operation's context on
//     expiry.
//
//   - Fallback: Substitutes a static or computed value when the protected
//     chain fails.
//
//   - Rate Limiter: Admits operations from a token bucket that refills at a
//     fixed rate, optionally waiting briefly for a token. It throttles by
//     request rate rather than by failure, so it is used standalone rather
//     than inside a Policy.
//
// # Usage
//
// Compose the patterns with the fluent builder. The with-calls may appear in
// any order; execution always layers timeout inside retry inside the circuit
// breaker inside the bulkhead, with fallback wrapping everything:
//
//	policy := resilience.NewPolicy[string]("search-api").
//	    WithTimeout(2 * time.Second).
//	    WithRetry(resilience.RetryConfig{
//	        MaxAttempts:  3,
//	        InitialDelay: 100 * time.Millisecond,
//	        Strategy:     resilience.BackoffExponential,
//	    }).
//	    WithCircuitBreaker(resilience.CircuitBreakerConfig{
//	        FailureThreshold: 5,
//	        ResetTimeout:     30 * time.Second,
//	    }).
//	    WithFallback("cached response").
//	    Build()
//
//	value, err := policy.Execute(ctx, func(ctx context.Context) (string, error) {
//	    return client.Search(ctx, query)
//	})
//
// Call sites protecting the same downstream resource should share breaker
// state through a Registry:
//
//	registry := resilience.NewRegistry()
//	cb := registry.GetOrCreate("payments", resilience.CircuitBreakerConfig{
//	    FailureThreshold: 3,
//	})
//	policy := resilience.NewPolicy[Receipt]("charge").
//	    WithSharedCircuitBreaker(cb).
//	    Build()
//
// Failures raised by the package itself carry types that callers can test
// with IsCircuitOpen, IsBulkheadFull, IsTimeout, IsRetryExhausted,
// IsRateLimited and IsResilienceError, distinguishing a protectively blocked
// dependency from a genuinely failing one.
package resilience
