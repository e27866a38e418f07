package resilience

import (
	"context"
	"time"
)

// Builder assembles a Policy fluently. Methods may be called in any order;
// the runtime layering is fixed regardless (see Policy). Each layer is
// independently enabled by a With* call and disabled by its Without*
// counterpart; a policy built with no layers calls the operation directly.
type Builder[T any] struct {
	name        string
	timeout     time.Duration
	retryCfg    *RetryConfig
	breakerCfg  *CircuitBreakerConfig
	breaker     *CircuitBreaker
	bulkheadCfg *BulkheadConfig
	bulkhead    *Bulkhead
	fallback    *FallbackConfig[T]
}

// NewPolicy starts building a policy for one logical operation.
func NewPolicy[T any](name string) *Builder[T] {
	return &Builder[T]{name: name}
}

// WithTimeout bounds every single attempt to d.
func (b *Builder[T]) WithTimeout(d time.Duration) *Builder[T] {
	b.timeout = d
	return b
}

// WithoutTimeout disables the per-attempt timeout.
func (b *Builder[T]) WithoutTimeout() *Builder[T] {
	b.timeout = 0
	return b
}

// WithRetry enables retrying with the given configuration.
func (b *Builder[T]) WithRetry(cfg RetryConfig) *Builder[T] {
	b.retryCfg = &cfg
	return b
}

// WithoutRetry disables retrying.
func (b *Builder[T]) WithoutRetry() *Builder[T] {
	b.retryCfg = nil
	return b
}

// WithCircuitBreaker gives the policy its own breaker built from cfg.
// The breaker inherits the policy name unless cfg.Name is set.
func (b *Builder[T]) WithCircuitBreaker(cfg CircuitBreakerConfig) *Builder[T] {
	b.breakerCfg = &cfg
	b.breaker = nil
	return b
}

// WithSharedCircuitBreaker attaches an existing breaker, typically one
// obtained from a Registry so call sites share state for a resource.
func (b *Builder[T]) WithSharedCircuitBreaker(cb *CircuitBreaker) *Builder[T] {
	b.breaker = cb
	b.breakerCfg = nil
	return b
}

// WithoutCircuitBreaker disables circuit breaking.
func (b *Builder[T]) WithoutCircuitBreaker() *Builder[T] {
	b.breakerCfg = nil
	b.breaker = nil
	return b
}

// WithBulkhead gives the policy its own bulkhead built from cfg.
// The bulkhead inherits the policy name unless cfg.Name is set.
func (b *Builder[T]) WithBulkhead(cfg BulkheadConfig) *Builder[T] {
	b.bulkheadCfg = &cfg
	b.bulkhead = nil
	return b
}

// WithSharedBulkhead attaches an existing bulkhead shared across call sites.
func (b *Builder[T]) WithSharedBulkhead(bh *Bulkhead) *Builder[T] {
	b.bulkhead = bh
	b.bulkheadCfg = nil
	return b
}

// WithoutBulkhead disables bulkhead isolation.
func (b *Builder[T]) WithoutBulkhead() *Builder[T] {
	b.bulkheadCfg = nil
	b.bulkhead = nil
	return b
}

// WithFallback substitutes the static value when the protected chain fails.
func (b *Builder[T]) WithFallback(value T) *Builder[T] {
	b.fallback = &FallbackConfig[T]{Value: value}
	return b
}

// WithFallbackFunc substitutes a computed value when the protected chain
// fails.
func (b *Builder[T]) WithFallbackFunc(fn func(ctx context.Context, cause error) (T, error)) *Builder[T] {
	b.fallback = &FallbackConfig[T]{Compute: fn}
	return b
}

// WithFallbackConfig sets the full fallback configuration, including the
// OnFallback notification hook.
func (b *Builder[T]) WithFallbackConfig(cfg FallbackConfig[T]) *Builder[T] {
	b.fallback = &cfg
	return b
}

// WithoutFallback disables failure substitution.
func (b *Builder[T]) WithoutFallback() *Builder[T] {
	b.fallback = nil
	return b
}

// Build constructs the policy.
func (b *Builder[T]) Build() *Policy[T] {
	p := &Policy[T]{
		name:     b.name,
		fallback: b.fallback,
	}

	if b.timeout > 0 {
		p.timeout = NewTimeout(TimeoutConfig{Name: b.name, Timeout: b.timeout})
	}

	if b.retryCfg != nil {
		p.retry = NewRetry(*b.retryCfg)
	}

	switch {
	case b.breaker != nil:
		p.breaker = b.breaker
	case b.breakerCfg != nil:
		cfg := *b.breakerCfg
		if cfg.Name == "" {
			cfg.Name = b.name
		}
		p.breaker = NewCircuitBreaker(cfg)
	}

	switch {
	case b.bulkhead != nil:
		p.bulkhead = b.bulkhead
	case b.bulkheadCfg != nil:
		cfg := *b.bulkheadCfg
		if cfg.Name == "" {
			cfg.Name = b.name
		}
		p.bulkhead = NewBulkhead(cfg)
	}

	return p
}
