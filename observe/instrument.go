package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

// StateChangeListener returns a circuit breaker listener that logs every
// transition and records it as a metric. Transitions into Open log at warn;
// recoveries log at info. Pass it to CircuitBreakerConfig.OnStateChange or
// CircuitBreaker.Subscribe.
func StateChangeListener(logger Logger, metrics Metrics) func(resilience.StateChange) {
	return func(change resilience.StateChange) {
		ctx := context.Background()
		metrics.RecordStateChange(ctx, change)

		fields := []Field{
			{Key: "circuit", Value: change.Name},
			{Key: "from", Value: change.From.String()},
			{Key: "to", Value: change.To.String()},
		}
		switch {
		case change.Recovered():
			logger.Info(ctx, "circuit recovered", fields...)
		case change.To == resilience.StateOpen:
			logger.Warn(ctx, "circuit opened", fields...)
		default:
			logger.Info(ctx, "circuit state changed", fields...)
		}
	}
}

// RetryListener returns a callback for RetryConfig.OnRetry that logs each
// retry and counts it.
func RetryListener(logger Logger, metrics Metrics, policy string) func(attempt int, err error, delay time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		ctx := context.Background()
		metrics.RecordRetry(ctx, policy, attempt)
		logger.Debug(ctx, "retrying operation",
			Field{Key: "policy", Value: policy},
			Field{Key: "attempt", Value: attempt},
			Field{Key: "delay", Value: delay.String()},
			Field{Key: "error", Value: err.Error()},
		)
	}
}

// FallbackListener returns a callback for FallbackConfig.OnFallback that
// logs the substitution and its cause.
func FallbackListener(logger Logger, policy string) func(cause error) {
	return func(cause error) {
		logger.Warn(context.Background(), "serving fallback value",
			Field{Key: "policy", Value: policy},
			Field{Key: "cause", Value: cause.Error()},
		)
	}
}

// Execute runs a policy operation inside a span and records execution
// metrics, including rejections classified by layer.
func Execute[T any](ctx context.Context, obs Observer, policy *resilience.Policy[T], op func(context.Context) (T, error)) (T, error) {
	if obs == nil {
		var zero T
		return zero, ErrNilObserver
	}

	ctx, span := obs.Tracer().Start(ctx, "resilience.policy/"+policy.Name())
	defer span.End()

	res, err := policy.ExecuteWithResult(ctx, op)

	obs.Metrics().RecordExecution(ctx, policy.Name(), res.Duration, res.UsedFallback, err)
	if err != nil && resilience.IsResilienceError(err) {
		obs.Metrics().RecordRejection(ctx, policy.Name(), RejectionKind(err))
	}

	span.SetAttributes(
		attribute.Int("resilience.attempts", res.Attempts),
		attribute.Bool("resilience.used_fallback", res.UsedFallback),
		attribute.String("resilience.circuit_state", res.CircuitState.String()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res.Value, err
}
