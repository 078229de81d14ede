package circuitbreaker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker opens after more than maxFailures failures inside window.
// Once timeout has passed since it opened, a single trial call is let
// through; every other call fails with ErrOpen until the trial finishes.
type CircuitBreaker struct {
	name        string
	maxFailures int
	window      time.Duration
	timeout     time.Duration
	failures    []time.Time
	openedAt    time.Time
	state       State
	trialing    bool
	ignore      func(error) bool
	now         func() time.Time
	logger      *zap.Logger
	mu          sync.Mutex
}

type Option func(*CircuitBreaker)

func WithWindow(window time.Duration) Option {
	return func(cb *CircuitBreaker) { cb.window = window }
}

// WithIgnored marks errors that count as successful calls, e.g. lookups of
// records that do not exist.
func WithIgnored(ignore func(error) bool) Option {
	return func(cb *CircuitBreaker) { cb.ignore = ignore }
}

func WithLogger(logger *zap.Logger) Option {
	return func(cb *CircuitBreaker) { cb.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) { cb.now = now }
}

func New(name string, maxFailures int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		window:      60 * time.Second,
		timeout:     timeout,
		state:       StateClosed,
		failures:    make([]time.Time, 0),
		ignore:      func(error) bool { return false },
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Execute runs fn unless the breaker is open, in which case ErrOpen is
// returned without calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	return cb.ExecuteContext(context.Background(), fn)
}

// ExecuteContext is Execute for calls bound to ctx. A call that fails after
// ctx was cancelled or timed out says nothing about the protected resource
// and is neither a failure nor a success.
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func() error) error {
	trial, err := cb.allow()
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			cb.release(trial)
			panic(r)
		}
	}()
	err = fn()
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		cb.release(trial)
		return err
	}
	cb.record(err, trial)
	return err
}

func (cb *CircuitBreaker) allow() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return false, nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.timeout {
			return false, ErrOpen
		}
		cb.failures = cb.failures[:0]
		cb.setState(StateHalfOpen)
	}
	if cb.trialing {
		return false, ErrOpen
	}
	cb.trialing = true
	return true, nil
}

func (cb *CircuitBreaker) release(trial bool) {
	if !trial {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trialing = false
}

func (cb *CircuitBreaker) record(err error, trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.trialing = false
	} else if cb.state == StateHalfOpen {
		// calls started before the breaker opened do not decide the trial
		return
	}

	now := cb.now()
	if err == nil || cb.ignore(err) {
		cb.cleanOldFailures(now)
		if cb.state == StateHalfOpen {
			cb.failures = cb.failures[:0]
			cb.setState(StateClosed)
		}
		return
	}

	cb.failures = append(cb.failures, now)
	cb.cleanOldFailures(now)
	if len(cb.failures) > cb.maxFailures || cb.state == StateHalfOpen {
		cb.openedAt = now
		if cb.state != StateOpen {
			cb.logger.Warn("Circuit breaker opened",
				zap.String("breaker", cb.name),
				zap.Int("failures", len(cb.failures)),
				zap.Error(err))
		}
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) cleanOldFailures(now time.Time) {
	cutoff := now.Add(-cb.window)
	i := 0
	for i < len(cb.failures) && !cb.failures[i].After(cutoff) {
		i++
	}
	if i > 0 {
		cb.failures = append(cb.failures[:0], cb.failures[i:]...)
	}
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}
	cb.logger.Info("Circuit breaker state changed",
		zap.String("breaker", cb.name),
		zap.Stringer("from", cb.state),
		zap.Stringer("to", state))
	cb.state = state
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
