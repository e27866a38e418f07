package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the resource recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// StateChange describes a single circuit state transition.
type StateChange struct {
	// Name is the breaker's resource name.
	Name string
	// From and To are the previous and new states.
	From State
	To   State
	// At is when the transition happened.
	At time.Time
}

// Recovered reports whether this transition closed the circuit after an
// outage, as opposed to a transition into Open or HalfOpen.
func (c StateChange) Recovered() bool {
	return c.To == StateClosed && c.From != StateClosed
}

// CircuitBreakerConfig configures the circuit breaker.
// All fields are fixed after construction.
type CircuitBreakerConfig struct {
	// Name identifies the protected resource.
	Name string

	// FailureThreshold is the number of failures within FailureWindow
	// before the circuit opens.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes required in
	// half-open state before the circuit closes.
	// Default: 1
	SuccessThreshold int

	// ResetTimeout is how long the circuit stays open before a recovery
	// probe is allowed.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// FailureWindow is the sliding interval over which failures count
	// toward FailureThreshold. Older failures are pruned lazily.
	// Default: 60 seconds
	FailureWindow time.Duration

	// OperationTimeout bounds a single admitted call. A call that exceeds
	// it fails with a TimeoutError. Zero disables the per-call timeout.
	OperationTimeout time.Duration

	// HalfOpenMaxProbes is the max simultaneous calls admitted while
	// half-open. Excess callers are rejected without consuming a probe slot.
	// Default: 1
	HalfOpenMaxProbes int

	// OnStateChange is called on every state transition.
	OnStateChange func(change StateChange)

	// IsFailure determines if an error counts toward the failure window.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool
}

// CircuitBreaker stops calling a resource that keeps failing, then
// cautiously probes recovery after ResetTimeout.
//
// State transitions: Closed opens once FailureThreshold failures land within
// FailureWindow; Open moves to HalfOpen only by time (evaluated lazily on
// the next state read or call, never skipping straight to Closed); HalfOpen
// closes after SuccessThreshold consecutive successes and reopens on any
// failure.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu             sync.Mutex
	state          State
	failures       []time.Time // failure timestamps in window, oldest first
	consecSuccess  int
	consecFailures int
	halfOpenActive int
	openedAt       time.Time
	lastTransition time.Time

	totalRequests  uint64
	totalSuccesses uint64
	totalFailures  uint64

	listeners []func(StateChange)
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.FailureWindow <= 0 {
		config.FailureWindow = 60 * time.Second
	}
	if config.HalfOpenMaxProbes <= 0 {
		config.HalfOpenMaxProbes = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	cb := &CircuitBreaker{
		config:         config,
		state:          StateClosed,
		lastTransition: time.Now(),
	}
	if config.OnStateChange != nil {
		cb.listeners = append(cb.listeners, config.OnStateChange)
	}
	return cb
}

// Name returns the protected resource name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Subscribe adds a listener notified on every state transition.
// Listeners run synchronously and must not call back into the breaker.
func (cb *CircuitBreaker) Subscribe(fn func(StateChange)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.listeners = append(cb.listeners, fn)
}

// Execute runs the operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	probe, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	opErr := cb.invoke(ctx, op)
	cb.afterRequest(probe, opErr)
	return opErr
}

// State returns the current circuit state, performing the time-based
// Open to HalfOpen transition if the reset timeout has elapsed. It never
// changes any counter.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked(time.Now())
}

// Reset forces the circuit closed and clears all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.transitionLocked(StateClosed, time.Now())
	cb.failures = cb.failures[:0]
	cb.consecSuccess = 0
	cb.consecFailures = 0
	cb.halfOpenActive = 0
	cb.totalRequests = 0
	cb.totalSuccesses = 0
	cb.totalFailures = 0
}

// Trip forces the circuit open regardless of the current failure count.
func (cb *CircuitBreaker) Trip() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionLocked(StateOpen, time.Now())
}

// beforeRequest admits or rejects the call. It reports whether the call
// consumed a half-open probe slot.
func (cb *CircuitBreaker) beforeRequest() (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	cb.totalRequests++

	switch cb.currentStateLocked(now) {
	case StateOpen:
		return false, &CircuitOpenError{
			Name:       cb.config.Name,
			RetryAfter: cb.openedAt.Add(cb.config.ResetTimeout),
		}
	case StateHalfOpen:
		if cb.halfOpenActive >= cb.config.HalfOpenMaxProbes {
			return false, &CircuitOpenError{
				Name:       cb.config.Name,
				RetryAfter: cb.openedAt.Add(cb.config.ResetTimeout),
			}
		}
		cb.halfOpenActive++
		return true, nil
	}

	return false, nil
}

// invoke runs the operation, racing it against the per-call timeout when one
// is configured. The operation receives the expiring context, so a
// context-aware operation is cancelled rather than merely abandoned.
func (cb *CircuitBreaker) invoke(ctx context.Context, op func(context.Context) error) error {
	if cb.config.OperationTimeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, cb.config.OperationTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Name: cb.config.Name, Timeout: cb.config.OperationTimeout}
		}
		return ctx.Err()
	}
}

func (cb *CircuitBreaker) afterRequest(probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.halfOpenActive--
	}

	now := time.Now()

	if !cb.config.IsFailure(err) {
		cb.recordSuccessLocked(now)
		return
	}
	cb.recordFailureLocked(now)
}

func (cb *CircuitBreaker) recordSuccessLocked(now time.Time) {
	cb.totalSuccesses++
	cb.consecFailures = 0

	switch cb.state {
	case StateClosed:
		// Successes do not shrink the window; a success simply restarts it.
		cb.failures = cb.failures[:0]

	case StateHalfOpen:
		cb.consecSuccess++
		if cb.consecSuccess >= cb.config.SuccessThreshold {
			cb.transitionLocked(StateClosed, now)
		}
	}
}

func (cb *CircuitBreaker) recordFailureLocked(now time.Time) {
	cb.totalFailures++
	cb.consecFailures++

	switch cb.state {
	case StateClosed:
		cb.failures = append(cb.failures, now)
		cb.pruneLocked(now)
		if len(cb.failures) >= cb.config.FailureThreshold {
			cb.transitionLocked(StateOpen, now)
		}

	case StateHalfOpen:
		// A failed probe reopens immediately and restarts the reset clock.
		cb.transitionLocked(StateOpen, now)
	}
}

// currentStateLocked performs the lazy time-based Open to HalfOpen
// transition and returns the effective state.
func (cb *CircuitBreaker) currentStateLocked(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.config.ResetTimeout {
		cb.transitionLocked(StateHalfOpen, now)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to State, now time.Time) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.lastTransition = now

	switch to {
	case StateOpen:
		cb.openedAt = now
	case StateHalfOpen:
		cb.halfOpenActive = 0
		cb.consecSuccess = 0
	case StateClosed:
		cb.failures = cb.failures[:0]
		cb.consecSuccess = 0
	}

	change := StateChange{Name: cb.config.Name, From: from, To: to, At: now}
	for _, fn := range cb.listeners {
		fn(change)
	}
}

// pruneLocked drops failure timestamps that have aged out of the window.
func (cb *CircuitBreaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-cb.config.FailureWindow)
	i := 0
	for i < len(cb.failures) && cb.failures[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		cb.failures = append(cb.failures[:0], cb.failures[i:]...)
	}
}

// Stats returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state := cb.currentStateLocked(now)
	cb.pruneLocked(now)

	return CircuitBreakerStats{
		Name:                 cb.config.Name,
		State:                state,
		WindowFailures:       len(cb.failures),
		ConsecutiveSuccesses: cb.consecSuccess,
		ConsecutiveFailures:  cb.consecFailures,
		TotalRequests:        cb.totalRequests,
		TotalSuccesses:       cb.totalSuccesses,
		TotalFailures:        cb.totalFailures,
		LastTransition:       cb.lastTransition,
		OpenedAt:             cb.openedAt,
	}
}

// CircuitBreakerStats contains circuit breaker statistics.
type CircuitBreakerStats struct {
	Name                 string
	State                State
	WindowFailures       int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
	TotalRequests        uint64
	TotalSuccesses       uint64
	TotalFailures        uint64
	LastTransition       time.Time
	OpenedAt             time.Time
}
