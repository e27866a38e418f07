package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func unhealthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Unhealthy("down", errors.New("boom"))
	})
}

// TestAggregator_CheckAll verifies all registered checks run and are keyed by name.
func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", unhealthyChecker("b"))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["a"].Status != StatusHealthy {
		t.Errorf("expected a healthy, got %v", results["a"].Status)
	}
	if results["b"].Status != StatusUnhealthy {
		t.Errorf("expected b unhealthy, got %v", results["b"].Status)
	}
}

// TestAggregator_CheckAllEmpty verifies no checkers yields an empty result set.
func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator()
	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if agg.OverallStatus(results) != StatusHealthy {
		t.Error("expected empty result set to be healthy")
	}
}

// TestAggregator_CheckSingle verifies Check runs one named checker.
func TestAggregator_CheckSingle(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))

	result, err := agg.Check(context.Background(), "a")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("expected healthy, got %v", result.Status)
	}

	_, err = agg.Check(context.Background(), "missing")
	if !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("expected ErrCheckerNotFound, got: %v", err)
	}
}

// TestAggregator_OverallStatus verifies status folding precedence.
func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAggregator_Timeout verifies a hung check reports unhealthy with ErrCheckTimeout.
func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("hung", NewCheckerFunc("hung", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(time.Second)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	result := results["hung"]
	if result.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", result.Status)
	}
	if !errors.Is(result.Error, ErrCheckTimeout) {
		t.Errorf("expected ErrCheckTimeout, got: %v", result.Error)
	}
}

// TestAggregator_MaxParallel verifies the concurrency bound is honored.
func TestAggregator_MaxParallel(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second, MaxParallel: 1})

	var active, maxActive atomic.Int32

	check := func(ctx context.Context) Result {
		n := active.Add(1)
		if m := maxActive.Load(); n > m {
			maxActive.CompareAndSwap(m, n)
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return Healthy("ok")
	}

	for _, name := range []string{"a", "b", "c"} {
		agg.Register(name, NewCheckerFunc(name, check))
	}

	agg.CheckAll(context.Background())
	if maxActive.Load() > 1 {
		t.Errorf("expected at most 1 concurrent check, observed %d", maxActive.Load())
	}
}

// TestAggregator_RegisterUnregister verifies registration bookkeeping.
func TestAggregator_RegisterUnregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", healthyChecker("b"))
	agg.Register("a", healthyChecker("a")) // re-register keeps order

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names: %v", names)
	}

	agg.Unregister("a")
	names = agg.CheckerNames()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("unexpected names after unregister: %v", names)
	}
}

// TestAggregator_AsChecker verifies the composite checker folds its children.
func TestAggregator_AsChecker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", unhealthyChecker("b"))

	composite := agg.Checker()
	if composite.Name() != "aggregate" {
		t.Errorf("expected name 'aggregate', got %q", composite.Name())
	}

	result := composite.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", result.Status)
	}
	if result.Message != "some checks failed" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if len(result.Details) != 2 {
		t.Errorf("expected 2 detail entries, got %d", len(result.Details))
	}
}
