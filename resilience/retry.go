package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy defines how delays grow between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier after each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffFixed uses InitialDelay unchanged for every retry.
	BackoffFixed
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds up to 25% randomness to delays to prevent thundering herd.
	// Default: false (delays are deterministic)
	Jitter bool

	// RetryIf determines if an error should trigger a retry. An error it
	// rejects aborts immediately and surfaces as-is, not wrapped in
	// RetryExhaustedError.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry implements retry with backoff. It holds no per-call state; a single
// call's attempts are strictly sequential.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs the operation with retry logic. After the final failed
// attempt it returns a RetryExhaustedError wrapping the last error.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	_, err := r.ExecuteCount(ctx, op)
	return err
}

// ExecuteCount runs the operation with retry logic and reports how many
// attempts were made.
func (r *Retry) ExecuteCount(ctx context.Context, op func(context.Context) error) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)

		if err == nil {
			return attempt, nil
		}

		// Non-retryable errors abort without consuming remaining attempts.
		if !r.config.RetryIf(err) {
			return attempt, err
		}

		lastErr = err

		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.delay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
	}

	return r.config.MaxAttempts, &RetryExhaustedError{
		Attempts: r.config.MaxAttempts,
		Err:      lastErr,
	}
}

// delay returns the wait before attempt+1. With the exponential strategy the
// delay before attempt k is InitialDelay * Multiplier^(k-1), capped at
// MaxDelay.
func (r *Retry) delay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffFixed:
		delay = r.config.InitialDelay

	case BackoffExponential:
		multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter {
		// A delay under 4ns has no quarter to randomize over.
		if q := int64(delay / 4); q > 0 {
			// #nosec G404 -- jitter is non-cryptographic timing variance.
			delay += time.Duration(rand.Int64N(q))
		}
	}

	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// RetryResult carries the outcome of a value-returning retried operation.
type RetryResult[T any] struct {
	Value    T
	Attempts int
}

// RetryWithResult runs a value-returning operation under r's retry policy.
func RetryWithResult[T any](ctx context.Context, r *Retry, op func(context.Context) (T, error)) (RetryResult[T], error) {
	var value T
	attempts, err := r.ExecuteCount(ctx, func(ctx context.Context) error {
		v, opErr := op(ctx)
		if opErr == nil {
			value = v
		}
		return opErr
	})
	return RetryResult[T]{Value: value, Attempts: attempts}, err
}
