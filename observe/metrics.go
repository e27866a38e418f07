package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

// Metrics records resilience engine telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records one policy execution with its duration,
	// whether the fallback was served, and the final error if any.
	RecordExecution(ctx context.Context, policy string, duration time.Duration, usedFallback bool, err error)

	// RecordStateChange records a circuit breaker transition.
	RecordStateChange(ctx context.Context, change resilience.StateChange)

	// RecordRetry records one retry of an operation.
	RecordRetry(ctx context.Context, policy string, attempt int)

	// RecordRejection records a call blocked by a resilience layer before
	// the operation ran, classified by kind (see RejectionKind).
	RecordRejection(ctx context.Context, resource, kind string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	executions    metric.Int64Counter
	execErrors    metric.Int64Counter
	fallbacks     metric.Int64Counter
	durationHist  metric.Float64Histogram
	transitions   metric.Int64Counter
	retries       metric.Int64Counter
	rejections    metric.Int64Counter
}

// newMetrics creates a Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	executions, err := meter.Int64Counter(
		"resilience.policy.executions",
		metric.WithDescription("Total number of policy executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	execErrors, err := meter.Int64Counter(
		"resilience.policy.errors",
		metric.WithDescription("Policy executions that ended in an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"resilience.policy.fallbacks",
		metric.WithDescription("Policy executions rescued by a fallback value"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"resilience.policy.duration_ms",
		metric.WithDescription("Policy execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"resilience.circuit.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"resilience.retry.attempts",
		metric.WithDescription("Retry attempts beyond the first invocation"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"resilience.rejections",
		metric.WithDescription("Calls blocked by a resilience layer before the operation ran"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		executions:   executions,
		execErrors:   execErrors,
		fallbacks:    fallbacks,
		durationHist: durationHist,
		transitions:  transitions,
		retries:      retries,
		rejections:   rejections,
	}, nil
}

func (m *metricsImpl) RecordExecution(ctx context.Context, policy string, duration time.Duration, usedFallback bool, err error) {
	opt := metric.WithAttributes(attribute.String("policy", policy))

	m.executions.Add(ctx, 1, opt)
	if err != nil {
		m.execErrors.Add(ctx, 1, opt)
	}
	if usedFallback {
		m.fallbacks.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordStateChange(ctx context.Context, change resilience.StateChange) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("circuit", change.Name),
		attribute.String("from", change.From.String()),
		attribute.String("to", change.To.String()),
	))
}

func (m *metricsImpl) RecordRetry(ctx context.Context, policy string, attempt int) {
	m.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", policy),
		attribute.Int("attempt", attempt),
	))
}

func (m *metricsImpl) RecordRejection(ctx context.Context, resource, kind string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("kind", kind),
	))
}

// RejectionKind classifies a resilience error for the rejection counter.
func RejectionKind(err error) string {
	switch {
	case resilience.IsCircuitOpen(err):
		return "circuit_open"
	case resilience.IsBulkheadFull(err):
		return "bulkhead_full"
	case resilience.IsTimeout(err):
		return "timeout"
	case resilience.IsRetryExhausted(err):
		return "retry_exhausted"
	case resilience.IsRateLimited(err):
		return "rate_limited"
	default:
		return "operation"
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NoopMetrics returns a Metrics recorder that discards everything.
func NoopMetrics() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordExecution(context.Context, string, time.Duration, bool, error) {}
func (noopMetrics) RecordStateChange(context.Context, resilience.StateChange)           {}
func (noopMetrics) RecordRetry(context.Context, string, int)                            {}
func (noopMetrics) RecordRejection(context.Context, string, string)                     {}

var _ Metrics = (*metricsImpl)(nil)
