package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shrek82/jmapper/core"
)

// ErrCircuitOpen is returned without running the statement while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreakerMiddleware stops running statements after Threshold
// consecutive failures and lets one through again after ResetTimeout.
type CircuitBreakerMiddleware struct {
	Threshold    int           // Number of failures before opening
	ResetTimeout time.Duration // Time to wait before half-open

	mu             sync.Mutex
	state          State
	failures       int
	lastFailure    time.Time
	halfOpenPassed bool
}

func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreakerMiddleware {
	return &CircuitBreakerMiddleware{
		Threshold:    threshold,
		ResetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

func (m *CircuitBreakerMiddleware) Name() string {
	return "CircuitBreaker"
}

func (m *CircuitBreakerMiddleware) Init(db *core.DB) error {
	return nil
}

func (m *CircuitBreakerMiddleware) Shutdown() error {
	return nil
}

func (m *CircuitBreakerMiddleware) Process(ctx context.Context, stmt *core.Statement, next core.QueryFunc) (*core.Result, error) {
	m.mu.Lock()
	switch m.state {
	case StateOpen:
		if time.Since(m.lastFailure) > m.ResetTimeout {
			m.state = StateHalfOpen
			m.halfOpenPassed = false
		} else {
			m.mu.Unlock()
			return nil, ErrCircuitOpen
		}
	case StateHalfOpen:
		if m.halfOpenPassed {
			// one trial statement at a time
			m.mu.Unlock()
			return nil, ErrCircuitOpen
		}
		m.halfOpenPassed = true
	}
	m.mu.Unlock()

	res, err := next(ctx, stmt)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		m.recordSuccess()
	case isCallerError(err):
		m.halfOpenPassed = false
	default:
		m.recordFailure()
	}

	return res, err
}

func (m *CircuitBreakerMiddleware) recordFailure() {
	m.failures++
	m.lastFailure = time.Now()

	if m.state == StateClosed {
		if m.failures >= m.Threshold {
			m.state = StateOpen
		}
	} else if m.state == StateHalfOpen {
		m.state = StateOpen
		m.halfOpenPassed = false
	}
}

func (m *CircuitBreakerMiddleware) recordSuccess() {
	if m.state == StateHalfOpen {
		m.state = StateClosed
		m.failures = 0
		m.halfOpenPassed = false
	} else if m.state == StateClosed {
		m.failures = 0
	}
}

// State returns the current breaker state.
func (m *CircuitBreakerMiddleware) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// isCallerError reports failures caused by the query itself rather than the
// database, which must not trip the breaker.
func isCallerError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, core.ErrColumnNotFound) ||
		errors.Is(err, core.ErrConversion)
}
