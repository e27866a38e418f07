package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		t.Fatalf("%s metric not found", name)
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] for %s, got %T", name, found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatalf("no data points for %s", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_ExecutionCounters verifies the execution counters for success,
// error, and fallback outcomes.
func TestMetrics_ExecutionCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordExecution(ctx, "payments", 10*time.Millisecond, false, nil)
	m.RecordExecution(ctx, "payments", 10*time.Millisecond, false, errors.New("boom"))
	m.RecordExecution(ctx, "payments", 10*time.Millisecond, true, nil)

	rm := collect(t, reader)

	if got := sumValue(t, rm, "resilience.policy.executions"); got != 3 {
		t.Errorf("expected 3 executions, got %d", got)
	}
	if got := sumValue(t, rm, "resilience.policy.errors"); got != 1 {
		t.Errorf("expected 1 error, got %d", got)
	}
	if got := sumValue(t, rm, "resilience.policy.fallbacks"); got != 1 {
		t.Errorf("expected 1 fallback, got %d", got)
	}
}

// TestMetrics_DurationHistogramRecords verifies duration is recorded in milliseconds.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordExecution(context.Background(), "payments", 50*time.Millisecond, false, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "resilience.policy.duration_ms")
	if found == nil {
		t.Fatal("resilience.policy.duration_ms metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if got := hist.DataPoints[0].Sum; got != 50 {
		t.Errorf("expected duration sum 50ms, got %f", got)
	}
}

// TestMetrics_StateChangeAttributes verifies transition counters carry
// circuit/from/to attributes.
func TestMetrics_StateChangeAttributes(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordStateChange(context.Background(), resilience.StateChange{
		Name: "payments",
		From: resilience.StateClosed,
		To:   resilience.StateOpen,
		At:   time.Now(),
	})

	rm := collect(t, reader)
	found := findMetric(rm, "resilience.circuit.transitions")
	if found == nil {
		t.Fatal("resilience.circuit.transitions metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	want := map[string]string{
		"circuit": "payments",
		"from":    "closed",
		"to":      "open",
	}
	attrs := sum.DataPoints[0].Attributes
	for iter := attrs.Iter(); iter.Next(); {
		kv := iter.Attribute()
		if exp, ok := want[string(kv.Key)]; ok {
			if kv.Value.AsString() != exp {
				t.Errorf("expected %s=%q, got %q", kv.Key, exp, kv.Value.AsString())
			}
			delete(want, string(kv.Key))
		}
	}
	for k := range want {
		t.Errorf("attribute %q not found", k)
	}
}

// TestMetrics_RetryAndRejectionCounters verifies the remaining counters.
func TestMetrics_RetryAndRejectionCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRetry(ctx, "payments", 1)
	m.RecordRetry(ctx, "payments", 2)
	m.RecordRejection(ctx, "payments", "circuit_open")

	rm := collect(t, reader)

	if got := sumValue(t, rm, "resilience.retry.attempts"); got != 2 {
		t.Errorf("expected 2 retries, got %d", got)
	}
	if got := sumValue(t, rm, "resilience.rejections"); got != 1 {
		t.Errorf("expected 1 rejection, got %d", got)
	}
}

// TestMetrics_ConcurrentRecording verifies thread safety.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)

	const numGoroutines = 100
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordExecution(context.Background(), "concurrent", time.Millisecond, false, nil)
		}()
	}
	wg.Wait()

	rm := collect(t, reader)
	if got := sumValue(t, rm, "resilience.policy.executions"); got != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, got)
	}
}

// TestRejectionKind verifies error classification.
func TestRejectionKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"circuit open", &resilience.CircuitOpenError{Name: "c"}, "circuit_open"},
		{"bulkhead full", &resilience.BulkheadFullError{Name: "b"}, "bulkhead_full"},
		{"timeout", &resilience.TimeoutError{Name: "t", Timeout: time.Second}, "timeout"},
		{"retry exhausted", &resilience.RetryExhaustedError{Attempts: 3, Err: errors.New("boom")}, "retry_exhausted"},
		{"rate limited", &resilience.RateLimitError{Name: "r", RetryAfter: 50 * time.Millisecond}, "rate_limited"},
		{"plain error", errors.New("boom"), "operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RejectionKind(tt.err); got != tt.want {
				t.Errorf("RejectionKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
