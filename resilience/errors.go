package resilience

import (
	"errors"
	"fmt"
	"time"
)

// CircuitOpenError is returned when a circuit breaker rejects a call without
// invoking the operation, either because the circuit is open or because the
// half-open probe budget is already consumed.
type CircuitOpenError struct {
	// Name is the protected resource.
	Name string

	// RetryAfter is the earliest instant a recovery probe may be admitted.
	RetryAfter time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("resilience: circuit %q is open (retry after %s)",
		e.Name, e.RetryAfter.Format(time.RFC3339))
}

// TimeoutError is returned when an operation exceeds its time budget, either
// a breaker's per-call timeout or a policy's attempt timeout.
type TimeoutError struct {
	// Name is the protected resource or policy.
	Name string

	// Timeout is the configured budget that was exceeded.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: %q timed out after %s", e.Name, e.Timeout)
}

// BulkheadFullError is returned when a bulkhead has neither an active slot
// nor a queue slot available. The operation is never invoked.
type BulkheadFullError struct {
	// Name is the protected resource.
	Name string

	// MaxConcurrent and MaxQueueSize are the limits that were hit.
	MaxConcurrent int
	MaxQueueSize  int
}

func (e *BulkheadFullError) Error() string {
	return fmt.Sprintf("resilience: bulkhead %q at capacity (%d active, %d queued)",
		e.Name, e.MaxConcurrent, e.MaxQueueSize)
}

// RetryExhaustedError wraps the last underlying error after every retry
// attempt was consumed by retryable failures.
type RetryExhaustedError struct {
	// Attempts is the number of invocations that were made.
	Attempts int

	// Err is the error returned by the final attempt.
	Err error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("resilience: %d attempts exhausted: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned when a rate limiter has no token available and
// waiting is disabled or would exceed the wait budget. The operation is never
// invoked.
type RateLimitError struct {
	// Name is the protected resource.
	Name string

	// RetryAfter is how long until enough tokens refill for one call.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("resilience: rate limit for %q exceeded (retry after %s)",
		e.Name, e.RetryAfter)
}

// IsCircuitOpen reports whether err means a circuit breaker protectively
// blocked the call.
func IsCircuitOpen(err error) bool {
	var e *CircuitOpenError
	return errors.As(err, &e)
}

// IsTimeout reports whether err means an operation exceeded its time budget.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsBulkheadFull reports whether err means a bulkhead rejected the call.
func IsBulkheadFull(err error) bool {
	var e *BulkheadFullError
	return errors.As(err, &e)
}

// IsRetryExhausted reports whether err means all retry attempts failed.
func IsRetryExhausted(err error) bool {
	var e *RetryExhaustedError
	return errors.As(err, &e)
}

// IsRateLimited reports whether err means a rate limiter rejected the call.
func IsRateLimited(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsResilienceError reports whether err originates from this package rather
// than from the protected operation itself. It lets callers distinguish
// "this dependency is protectively blocked" from "this dependency failed".
func IsResilienceError(err error) bool {
	return IsCircuitOpen(err) || IsTimeout(err) || IsBulkheadFull(err) ||
		IsRetryExhausted(err) || IsRateLimited(err)
}
