// Package breaker implements the three-state circuit breaker fabric (§4.3)
// that wraps every external dependency call the authentication core makes:
// the registry store, the DID resolver, and peer messaging.
package breaker

import (
	"sync"
	"time"
)

// State is one of the three circuit states.
type State int

const (
	CircuitClosed State = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s State) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time, lock-free copy of a breaker's state for
// reporting (§4.8 stats()).
type Snapshot struct {
	State           State
	FailureCount    int
	SuccessCount    int
	LastStateChange time.Time
	LastFailureTime time.Time
}

// CircuitBreaker is the low-level state machine from spec §3/§4.3. It knows
// nothing about what operation it protects; Breaker (below) wraps it with
// timeouts and an invocation helper.
//
// State machine:
//
//	CLOSED  --(failureCount reaches threshold)--> OPEN
//	OPEN    --(recoveryTimeout elapsed, one probe admitted)--> HALF_OPEN
//	HALF_OPEN --(probe success)--> CLOSED
//	HALF_OPEN --(probe failure)--> OPEN
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration

	state           State
	failureCount    int
	successCount    int
	lastStateChange time.Time
	lastFailureTime time.Time

	// halfOpenProbeInFlight is true while a single HALF_OPEN probe is
	// outstanding; additional CanAttempt calls fail fast until it resolves.
	halfOpenProbeInFlight bool
}

// NewCircuitBreaker constructs a breaker starting CLOSED with zero failures.
func NewCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            CircuitClosed,
		lastStateChange:  time.Now(),
	}
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetFailureCount returns the current consecutive-failure count.
func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// GetLastStateChange returns when the state last transitioned.
func (cb *CircuitBreaker) GetLastStateChange() time.Time {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastStateChange
}

// GetSnapshot returns a consistent copy of all breaker fields.
func (cb *CircuitBreaker) GetSnapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Snapshot{
		State:           cb.state,
		FailureCount:    cb.failureCount,
		SuccessCount:    cb.successCount,
		LastStateChange: cb.lastStateChange,
		LastFailureTime: cb.lastFailureTime,
	}
}

// CanAttempt reports whether a new invocation may proceed. When the breaker
// is OPEN and recoveryTimeout has elapsed, the first caller to observe this
// transitions the breaker to HALF_OPEN and is admitted as the single probe;
// every other concurrent caller is denied until that probe resolves.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitHalfOpen:
		if cb.halfOpenProbeInFlight {
			return false
		}
		cb.halfOpenProbeInFlight = true
		return true
	case CircuitOpen:
		if time.Since(cb.lastStateChange) < cb.recoveryTimeout {
			return false
		}
		cb.transitionLocked(CircuitHalfOpen)
		cb.halfOpenProbeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess reports a successful invocation. In CLOSED it resets the
// failure count; in HALF_OPEN it closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successCount++
	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenProbeInFlight = false
		cb.failureCount = 0
		cb.transitionLocked(CircuitClosed)
	case CircuitClosed:
		cb.failureCount = 0
	}
}

// RecordFailure reports a failed invocation. In CLOSED it increments the
// failure count, opening the circuit once the threshold is reached; in
// HALF_OPEN a single failure reopens the circuit with a refreshed openedAt.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()
	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenProbeInFlight = false
		cb.transitionLocked(CircuitOpen)
	case CircuitClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.transitionLocked(CircuitOpen)
		}
	}
}

// transitionLocked must be called with cb.mu held.
func (cb *CircuitBreaker) transitionLocked(to State) {
	cb.state = to
	cb.lastStateChange = time.Now()
}
