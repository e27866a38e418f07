package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// Name identifies the protected resource in RateLimitError.
	Name string

	// Rate is the number of operations allowed per second.
	// Default: 100
	Rate float64

	// Burst is the maximum burst size.
	// Default: 10
	Burst int

	// WaitOnLimit makes Execute wait for a token instead of rejecting.
	// Default: false
	WaitOnLimit bool

	// MaxWait caps how long Wait blocks for a token.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter implements a token bucket. Tokens refill continuously at Rate
// per second up to Burst; each admitted call consumes one. Unlike the other
// primitives it throttles by request rate rather than by failure or
// concurrency, so it stands alone rather than layering into a Policy.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	rejected   uint64
}

// NewRateLimiter creates a new rate limiter starting at full burst capacity.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Burst),
		lastRefill: time.Now(),
	}
}

// Name returns the rate limiter name.
func (rl *RateLimiter) Name() string {
	return rl.config.Name
}

// Allow reports whether one call is admitted under the rate limit.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN reports whether n calls are admitted, consuming n tokens if so.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}

	return false
}

// Wait blocks until a token is available, MaxWait elapses without one, or
// the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN blocks until n tokens are available. Exceeding MaxWait returns a
// RateLimitError.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if rl.AllowN(n) {
		return nil
	}

	waitTime := rl.retryAfter(n)
	if waitTime > rl.config.MaxWait {
		waitTime = rl.config.MaxWait
	}

	timer := time.NewTimer(waitTime)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if rl.AllowN(n) {
			return nil
		}
		return rl.limitErr(n)
	}
}

// Execute runs the operation if admitted by the rate limit. With WaitOnLimit
// set it waits for a token first; otherwise a limited call is rejected with a
// RateLimitError and the operation is never invoked.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return rl.limitErr(1)
	}

	return op(ctx)
}

// limitErr records a rejection and reports it with the current refill ETA.
func (rl *RateLimiter) limitErr(n int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.rejected++
	return &RateLimitError{Name: rl.config.Name, RetryAfter: rl.retryAfterLocked(n)}
}

// retryAfter reports how long until n tokens have refilled.
func (rl *RateLimiter) retryAfter(n int) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.retryAfterLocked(n)
}

func (rl *RateLimiter) retryAfterLocked(n int) time.Duration {
	rl.refillLocked()

	missing := float64(n) - rl.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / rl.config.Rate * float64(time.Second))
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() * rl.config.Rate

	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset restores the bucket to full burst capacity. The rejection count is
// preserved.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.lastRefill = time.Now()
}

// Stats returns a snapshot of the rate limiter state.
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return RateLimiterStats{
		Name:     rl.config.Name,
		Tokens:   rl.tokens,
		Rate:     rl.config.Rate,
		Burst:    rl.config.Burst,
		Rejected: rl.rejected,
	}
}

// RateLimiterStats contains rate limiter statistics.
type RateLimiterStats struct {
	Name     string
	Tokens   float64
	Rate     float64
	Burst    int
	Rejected uint64
}
