package resilience

import "time"

// APICallPolicy returns a builder tuned for outbound third-party API calls:
// moderate per-attempt timeout, exponential retry, circuit breaking, no
// bulkhead. Callers may adjust any layer before Build.
func APICallPolicy[T any](name string) *Builder[T] {
	return NewPolicy[T](name).
		WithTimeout(10 * time.Second).
		WithRetry(RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			Strategy:     BackoffExponential,
		}).
		WithCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		})
}

// DatabasePolicy returns a builder tuned for database queries: short
// timeout, tight circuit breaker, fixed-delay retry, and a bulkhead so a
// slow database cannot absorb every worker.
func DatabasePolicy[T any](name string) *Builder[T] {
	return NewPolicy[T](name).
		WithTimeout(5 * time.Second).
		WithRetry(RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			Strategy:     BackoffFixed,
		}).
		WithCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     15 * time.Second,
		}).
		WithBulkhead(BulkheadConfig{
			MaxConcurrent: 20,
			MaxQueueSize:  50,
		})
}

// CriticalPolicy returns a builder for calls that must fail fast: short
// timeout, aggressive circuit breaker, no retry.
func CriticalPolicy[T any](name string) *Builder[T] {
	return NewPolicy[T](name).
		WithTimeout(2 * time.Second).
		WithCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: 2,
			SuccessThreshold: 2,
			ResetTimeout:     60 * time.Second,
		})
}
