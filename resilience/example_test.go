package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

func ExampleNewCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             "weather-api",
		FailureThreshold: 3,
		ResetTimeout:     time.Second,
	})

	ctx := context.Background()
	err := cb.Execute(ctx, func(ctx context.Context) error {
		// Simulated successful operation
		return nil
	})

	if err == nil {
		fmt.Println("Operation succeeded")
	}
	// Output:
	// Operation succeeded
}

func ExampleCircuitBreaker_State() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()

	fmt.Println("Initial state:", cb.State())

	simulatedErr := errors.New("service unavailable")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return simulatedErr
		})
	}

	fmt.Println("After failures:", cb.State())

	cb.Reset()
	fmt.Println("After reset:", cb.State())
	// Output:
	// Initial state: closed
	// After failures: open
	// After reset: closed
}

func ExampleNewPolicy() {
	policy := resilience.NewPolicy[string]("search").
		WithTimeout(2 * time.Second).
		WithRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			Strategy:     resilience.BackoffFixed,
		}).
		WithFallback("no results").
		Build()

	value, err := policy.Execute(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("index unavailable")
	})

	fmt.Println("value:", value)
	fmt.Println("err:", err)
	// Output:
	// value: no results
	// err: <nil>
}

func ExamplePolicy_ExecuteWithResult() {
	policy := resilience.NewPolicy[int]("inventory").
		WithRetry(resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			Strategy:     resilience.BackoffFixed,
		}).
		Build()

	calls := 0
	res, err := policy.ExecuteWithResult(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	fmt.Println("value:", res.Value)
	fmt.Println("attempts:", res.Attempts)
	fmt.Println("err:", err)
	// Output:
	// value: 42
	// attempts: 2
	// err: <nil>
}

func ExampleRegistry() {
	registry := resilience.NewRegistry()

	// Both call sites share one breaker for the same resource.
	a := registry.GetOrCreate("payments", resilience.CircuitBreakerConfig{FailureThreshold: 3})
	b := registry.GetOrCreate("payments", resilience.CircuitBreakerConfig{FailureThreshold: 99})

	fmt.Println("shared:", a == b)
	fmt.Println("registered:", registry.Names())
	// Output:
	// shared: true
	// registered: [payments]
}

func ExampleIsCircuitOpen() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             "flaky",
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
	})

	ctx := context.Background()
	_ = cb.Execute(ctx, func(ctx context.Context) error {
		return errors.New("boom")
	})

	err := cb.Execute(ctx, func(ctx context.Context) error {
		return nil
	})

	fmt.Println("blocked:", resilience.IsCircuitOpen(err))
	// Output:
	// blocked: true
}
