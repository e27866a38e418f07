package health

import (
	"context"
	"fmt"

	"github.com/Francosimon53/secureagent-sub017/resilience"
)

// BreakerChecker reports a circuit breaker's state as component health.
// Closed is healthy, half-open is degraded while recovery probes run, and
// open is unhealthy.
type BreakerChecker struct {
	cb *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker backed by the given breaker.
func NewBreakerChecker(cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{cb: cb}
}

// Name returns the protected resource name.
func (c *BreakerChecker) Name() string {
	return c.cb.Name()
}

// Check maps the breaker state onto a health result with the breaker's
// counters attached as details. Reading the state performs the lazy open to
// half-open transition where due, so an expired open circuit reports
// degraded rather than unhealthy.
func (c *BreakerChecker) Check(_ context.Context) Result {
	stats := c.cb.Stats()

	details := map[string]any{
		"state":           stats.State.String(),
		"window_failures": stats.WindowFailures,
		"total_requests":  stats.TotalRequests,
		"total_failures":  stats.TotalFailures,
	}

	switch stats.State {
	case resilience.StateClosed:
		return Healthy(fmt.Sprintf("circuit %q closed", stats.Name)).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded(fmt.Sprintf("circuit %q probing recovery", stats.Name)).WithDetails(details)
	default:
		return Unhealthy(fmt.Sprintf("circuit %q open", stats.Name),
			&resilience.CircuitOpenError{Name: stats.Name}).WithDetails(details)
	}
}

// RegistryChecker reports the aggregate state of every breaker in a registry.
// One open circuit makes the whole check unhealthy; one half-open circuit
// with none open makes it degraded.
type RegistryChecker struct {
	reg *resilience.Registry
}

// NewRegistryChecker creates a checker over the given registry.
func NewRegistryChecker(reg *resilience.Registry) *RegistryChecker {
	return &RegistryChecker{reg: reg}
}

// Name identifies the registry check.
func (c *RegistryChecker) Name() string {
	return "circuit-breakers"
}

// Check inspects every registered breaker and folds their states into one
// result, with per-circuit states attached as details.
func (c *RegistryChecker) Check(_ context.Context) Result {
	all := c.reg.AllStats()

	details := make(map[string]any, len(all))
	var open, halfOpen int
	for name, stats := range all {
		details[name] = stats.State.String()
		switch stats.State {
		case resilience.StateOpen:
			open++
		case resilience.StateHalfOpen:
			halfOpen++
		}
	}

	switch {
	case open > 0:
		return Unhealthy(fmt.Sprintf("%d of %d circuits open", open, len(all)), nil).
			WithDetails(details)
	case halfOpen > 0:
		return Degraded(fmt.Sprintf("%d of %d circuits probing recovery", halfOpen, len(all))).
			WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("all %d circuits closed", len(all))).WithDetails(details)
	}
}
