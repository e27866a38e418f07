package resilience

import "context"

// FallbackConfig configures failure substitution for a value-returning
// operation. The substitute is either the static Value or, when set, the
// result of Compute.
type FallbackConfig[T any] struct {
	// Value is the static substitute returned when the operation fails.
	Value T

	// Compute, if set, produces the substitute instead of Value. It receives
	// the error that triggered the fallback. A Compute failure propagates
	// unguarded; there is no nested fallback.
	Compute func(ctx context.Context, cause error) (T, error)

	// OnFallback is called with the triggering error before the substitute
	// is resolved, for metrics or logging.
	OnFallback func(cause error)
}

// FallbackResult reports a fallback-wrapped outcome.
type FallbackResult[T any] struct {
	Value        T
	UsedFallback bool
}

// WithFallback invokes the operation and substitutes the configured fallback
// on any failure. The error is suppressed unless fallback resolution itself
// fails.
func WithFallback[T any](ctx context.Context, op func(context.Context) (T, error), fb FallbackConfig[T]) (FallbackResult[T], error) {
	v, err := op(ctx)
	if err == nil {
		return FallbackResult[T]{Value: v}, nil
	}
	return fb.resolve(ctx, err)
}

func (fb FallbackConfig[T]) resolve(ctx context.Context, cause error) (FallbackResult[T], error) {
	if fb.OnFallback != nil {
		fb.OnFallback(cause)
	}

	if fb.Compute != nil {
		v, err := fb.Compute(ctx, cause)
		if err != nil {
			var zero T
			return FallbackResult[T]{Value: zero}, err
		}
		return FallbackResult[T]{Value: v, UsedFallback: true}, nil
	}

	return FallbackResult[T]{Value: fb.Value, UsedFallback: true}, nil
}
