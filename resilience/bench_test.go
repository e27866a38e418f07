package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// BenchmarkCircuitBreaker_Execute_Closed measures happy path execution.
func BenchmarkCircuitBreaker_Execute_Closed(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 100,
		ResetTimeout:     time.Minute,
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkCircuitBreaker_Execute_Open measures rejection overhead.
func BenchmarkCircuitBreaker_Execute_Open(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Hour,
	})
	ctx := context.Background()
	_ = cb.Execute(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkCircuitBreaker_StateCheck measures state inspection overhead.
func BenchmarkCircuitBreaker_StateCheck(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     time.Minute,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.State()
	}
}

// BenchmarkBulkhead_Execute measures uncontended slot acquisition.
func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 16})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bh.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkPolicy_Execute_AllLayers measures the fully composed happy path.
func BenchmarkPolicy_Execute_AllLayers(b *testing.B) {
	p := NewPolicy[int]("bench").
		WithTimeout(time.Minute).
		WithRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}).
		WithCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 100}).
		WithBulkhead(BulkheadConfig{MaxConcurrent: 16}).
		Build()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Execute(ctx, func(ctx context.Context) (int, error) {
			return 1, nil
		})
	}
}

// BenchmarkPolicy_Execute_Bare measures the no-layer passthrough.
func BenchmarkPolicy_Execute_Bare(b *testing.B) {
	p := NewPolicy[int]("bare").Build()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Execute(ctx, func(ctx context.Context) (int, error) {
			return 1, nil
		})
	}
}

// BenchmarkRegistry_GetOrCreate measures cached lookup.
func BenchmarkRegistry_GetOrCreate(b *testing.B) {
	r := NewRegistry()
	r.Get("svc")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Get("svc")
	}
}
