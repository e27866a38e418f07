package health

import "errors"

var (
	// ErrCheckerNotFound is returned when a named checker is not registered.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrCheckTimeout is returned when a check exceeds the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timed out")
)
