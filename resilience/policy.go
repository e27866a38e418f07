package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Policy composes timeout, retry, circuit breaking, bulkhead isolation and
// fallback around one logical operation.
//
// The layering order is fixed, innermost first:
//
//	timeout -> retry -> circuit breaker -> bulkhead
//
// with fallback wrapping the entire chain. The timeout bounds a single
// attempt; retry repeats bounded attempts; the circuit breaker judges a full
// retry sequence as one success or failure, so a flapping dependency cannot
// be retried forever while the breaker is blind to it; the bulkhead holds a
// concurrency slot for the whole sequence, bounding total in-flight work
// including retries; fallback masks failure from any inner layer.
type Policy[T any] struct {
	name     string
	timeout  *Timeout
	retry    *Retry
	breaker  *CircuitBreaker
	bulkhead *Bulkhead
	fallback *FallbackConfig[T]

	executions atomic.Uint64
	successes  atomic.Uint64
	failures   atomic.Uint64
}

// PolicyResult carries the outcome of ExecuteWithResult.
type PolicyResult[T any] struct {
	// Value is the operation's result, or the fallback substitute.
	Value T

	// Duration is the wall time of the whole execution.
	Duration time.Duration

	// Attempts is how many times the operation was invoked. It is 1 when no
	// retry layer is configured or the chain was rejected before retrying.
	Attempts int

	// UsedFallback reports whether the fallback substitute was served.
	UsedFallback bool

	// CircuitState is the breaker's state after the execution. It is
	// StateClosed when no breaker is configured.
	CircuitState State

	// BulkheadActive and BulkheadQueued report the bulkhead's occupancy
	// after the execution. Both are zero when no bulkhead is configured.
	BulkheadActive int
	BulkheadQueued int
}

// Name returns the policy name.
func (p *Policy[T]) Name() string {
	return p.name
}

// CircuitBreaker returns the policy's breaker, or nil when disabled.
func (p *Policy[T]) CircuitBreaker() *CircuitBreaker {
	return p.breaker
}

// Bulkhead returns the policy's bulkhead, or nil when disabled.
func (p *Policy[T]) Bulkhead() *Bulkhead {
	return p.bulkhead
}

// Execute runs the operation through every enabled layer and unwraps the
// result. With every layer disabled it degrades to calling op directly.
func (p *Policy[T]) Execute(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	res, err := p.ExecuteWithResult(ctx, op)
	return res.Value, err
}

// ExecuteWithResult runs the operation and additionally reports elapsed
// duration, attempt count, fallback use and component occupancy.
func (p *Policy[T]) ExecuteWithResult(ctx context.Context, op func(context.Context) (T, error)) (PolicyResult[T], error) {
	start := time.Now()
	p.executions.Add(1)

	// The breaker's per-call timeout and the attempt timeout both abandon
	// overrunning goroutines; value and attempts must only be touched under
	// the mutex so an abandoned attempt can never race the final read.
	var mu sync.Mutex
	var value T
	attempts := 1

	attempt := func(ctx context.Context) (T, error) {
		return op(ctx)
	}

	if p.timeout != nil {
		inner := attempt
		attempt = func(ctx context.Context) (T, error) {
			return runWithTimeout(ctx, p.timeout, inner)
		}
	}

	call := func(ctx context.Context) error {
		v, err := attempt(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		value = v
		mu.Unlock()
		return nil
	}

	if p.retry != nil {
		inner := call
		call = func(ctx context.Context) error {
			n, err := p.retry.ExecuteCount(ctx, inner)
			mu.Lock()
			attempts = n
			mu.Unlock()
			return err
		}
	}

	if p.breaker != nil {
		inner := call
		call = func(ctx context.Context) error {
			return p.breaker.Execute(ctx, inner)
		}
	}

	if p.bulkhead != nil {
		inner := call
		call = func(ctx context.Context) error {
			return p.bulkhead.Execute(ctx, inner)
		}
	}

	err := call(ctx)
	if err == nil {
		p.successes.Add(1)
	} else {
		p.failures.Add(1)
	}

	mu.Lock()
	res := PolicyResult[T]{Attempts: attempts}
	if err == nil {
		res.Value = value
	}
	mu.Unlock()

	if err != nil && p.fallback != nil {
		fres, ferr := p.fallback.resolve(ctx, err)
		if ferr != nil {
			err = ferr
		} else {
			res.Value = fres.Value
			res.UsedFallback = fres.UsedFallback
			err = nil
		}
	}

	res.Duration = time.Since(start)
	if p.breaker != nil {
		res.CircuitState = p.breaker.State()
	}
	if p.bulkhead != nil {
		stats := p.bulkhead.Stats()
		res.BulkheadActive = stats.Active
		res.BulkheadQueued = stats.Queued
	}

	return res, err
}

// Reset resets only the policy's owned circuit breaker. Lifetime totals are
// preserved.
func (p *Policy[T]) Reset() {
	if p.breaker != nil {
		p.breaker.Reset()
	}
}

// Stats returns a snapshot of the policy's lifetime totals and component
// occupancy.
func (p *Policy[T]) Stats() PolicyStats {
	stats := PolicyStats{
		Name:            p.name,
		TotalExecutions: p.executions.Load(),
		Successes:       p.successes.Load(),
		Failures:        p.failures.Load(),
	}
	if p.breaker != nil {
		stats.CircuitState = p.breaker.State()
	}
	if p.bulkhead != nil {
		bs := p.bulkhead.Stats()
		stats.BulkheadActive = bs.Active
		stats.BulkheadQueued = bs.Queued
	}
	return stats
}

// PolicyStats contains policy lifetime statistics. Successes and Failures
// count the outcome of the protected chain; an execution rescued by fallback
// still counts as a failure here.
type PolicyStats struct {
	Name            string
	TotalExecutions uint64
	Successes       uint64
	Failures        uint64
	CircuitState    State
	BulkheadActive  int
	BulkheadQueued  int
}
