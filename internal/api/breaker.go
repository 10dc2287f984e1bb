package api

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the workboard's polled reads. The refresh timer fires every few
// seconds no matter what; when the backend is down, the breaker fast-fails
// the ticks instead of stacking timed-out requests.
//
// States:
//   - Closed:    normal operation, requests pass through
//   - Open:      all requests fail immediately (fast-fail)
//   - Half-Open: one probe request allowed through to test recovery

// BreakerState represents the current circuit breaker state.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // normal — requests flow
	BreakerOpen                         // tripped — fast-fail all requests
	BreakerHalfOpen                     // probing — one request allowed
)

// String returns a human-readable state name for logs.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds tunable parameters.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open
	SuccessThreshold int           // consecutive successes in half-open to close
	OpenTimeout      time.Duration // how long to stay open before probing
}

// DefaultBreakerConfig returns sensible defaults for the polling breaker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            BreakerState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker creates a breaker in Closed state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		state:            BreakerClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State returns the current breaker state (safe for concurrent reads).
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	// Auto-transition open → half-open once the timeout elapsed
	if cb.state == BreakerOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		cb.state = BreakerHalfOpen
		cb.successCount = 0
	}
	return cb.state
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen immediately if the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	state := cb.State()

	if state == BreakerOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// onFailure records a failure (must be called under lock).
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case BreakerClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = BreakerOpen
			cb.successCount = 0
		}
	case BreakerHalfOpen:
		// Probe failed — back to open
		cb.state = BreakerOpen
		cb.failureCount = 0
	}
}

// onSuccess records a success (must be called under lock).
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case BreakerClosed:
		cb.failureCount = 0
	case BreakerHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = BreakerClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}
