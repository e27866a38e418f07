// Package observe provides telemetry for the resilience engine: structured
// logging, OpenTelemetry metrics and tracing, and adapters that bridge the
// resilience package's notification hooks into all three.
//
// # Usage
//
// Build an Observer at the composition root and wire its listeners into the
// components you construct:
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "agent-runtime",
//	    Version:     "1.4.2",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
//	cb := registry.GetOrCreate("payments", resilience.CircuitBreakerConfig{
//	    OnStateChange: observe.StateChangeListener(obs.Logger(), obs.Metrics()),
//	})
//
// Policy executions are traced and measured with Execute:
//
//	value, err := observe.Execute(ctx, obs, policy, op)
package observe
