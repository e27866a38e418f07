// Package health reports the condition of resilience-protected dependencies.
//
// A Checker probes one component and returns a Result. BreakerChecker and
// RegistryChecker derive health directly from circuit breaker state: a closed
// circuit is healthy, a half-open circuit is degraded while recovery probes
// run, and an open circuit is unhealthy. The Aggregator fans checks out in
// parallel and folds their results into an overall status, and the HTTP
// handlers expose liveness, readiness and detailed views for orchestrators.
//
//	agg := health.NewAggregator()
//	agg.Register("payments", health.NewBreakerChecker(breaker))
//	agg.Register("circuits", health.NewRegistryChecker(registry))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
