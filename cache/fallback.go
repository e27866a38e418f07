package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

// Recording wraps an operation so every successful result refreshes the
// last-good value under key. Failures pass through without touching the
// store.
func Recording[T any](store Store[T], key string, ttl time.Duration, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		v, err := op(ctx)
		if err != nil {
			return v, err
		}
		// The live value is still good; a store failure must not fail the call.
		_ = store.Set(ctx, key, v, ttl)
		return v, nil
	}
}

// Fallback returns a fallback configuration that serves the last-good value
// under key. When the store has no fresh value the original failure
// propagates, wrapped with ErrNoLastGood.
func Fallback[T any](store Store[T], key string) resilience.FallbackConfig[T] {
	return resilience.FallbackConfig[T]{
		Compute: func(ctx context.Context, cause error) (T, error) {
			v, ok := store.Get(ctx, key)
			if !ok {
				var zero T
				return zero, fmt.Errorf("%w for %q: %w", ErrNoLastGood, key, cause)
			}
			return v, nil
		},
	}
}
