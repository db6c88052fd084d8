// Package poll implements a bounded retry loop that re-fetches a
// status-bearing resource on a fixed cadence until the resource satisfies a
// condition, the attempt budget runs out, or the caller cancels.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Default cadence for generation polling: 60 attempts 3 seconds apart, a
// three-minute ceiling.
const (
	DefaultInterval    = 3 * time.Second
	DefaultMaxAttempts = 60
)

// ErrActive is returned by Start when the session has already been started.
// A Session is single-use: cancel it and create a new one to poll again.
var ErrActive = errors.New("poll session already started")

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Polling
	Satisfied
	Exhausted
	Canceled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Satisfied:
		return "satisfied"
	case Exhausted:
		return "exhausted"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == Satisfied || s == Exhausted || s == Canceled
}

// Config describes one polling sequence.
type Config struct {
	// Interval between attempts. Defaults to DefaultInterval when <= 0.
	Interval time.Duration

	// MaxAttempts is the total attempt budget, counting failed fetches.
	// Defaults to DefaultMaxAttempts when <= 0.
	MaxAttempts int

	// Fetch performs one attempt. It returns true when the awaited condition
	// is met. A non-nil error is swallowed and counted as a non-satisfying
	// attempt; errors never terminate the loop early.
	Fetch func(ctx context.Context) (bool, error)

	// OnSatisfied fires exactly once when Fetch reports the condition met.
	OnSatisfied func()

	// OnExhausted fires exactly once when the attempt budget runs out. The
	// caller is expected to do one final unconditional refresh of the
	// resource and surface a non-fatal advisory.
	OnExhausted func()
}

// Session owns a single polling loop. Attempts are strictly sequential: the
// next attempt is scheduled only after the previous Fetch resolves. After
// Cancel, no further fetches occur and neither terminal callback fires.
type Session struct {
	cfg Config

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an idle session. Fetch must be non-nil.
func NewSession(cfg Config) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Session{cfg: cfg, done: make(chan struct{})}
}

// Start begins polling in a background goroutine. It returns ErrActive if the
// session was already started (active or finished).
func (s *Session) Start(ctx context.Context) error {
	if s.cfg.Fetch == nil {
		return errors.New("poll: Fetch is required")
	}
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrActive
	}
	ctx, cancel := context.WithCancel(ctx)
	s.state = Polling
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Cancel stops the loop. It is safe to call multiple times and after the
// session has finished. Callbacks registered in Config never fire after
// Cancel returns on an active session.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state != Polling {
		s.mu.Unlock()
		return
	}
	s.state = Canceled
	cancel := s.cancel
	s.mu.Unlock()
	cancel()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.cancel()

	for attempt := 1; ; attempt++ {
		ok, err := s.cfg.Fetch(ctx)
		if ctx.Err() != nil {
			// Canceled mid-fetch; Cancel already moved the state.
			s.finish(Canceled, nil)
			return
		}
		if err == nil && ok {
			s.finish(Satisfied, s.cfg.OnSatisfied)
			return
		}
		if attempt >= s.cfg.MaxAttempts {
			s.finish(Exhausted, s.cfg.OnExhausted)
			return
		}

		select {
		case <-ctx.Done():
			s.finish(Canceled, nil)
			return
		case <-time.After(s.cfg.Interval):
		}
	}
}

// finish moves to a terminal state and invokes cb, unless the session was
// already canceled externally.
func (s *Session) finish(st State, cb func()) {
	s.mu.Lock()
	if s.state != Polling {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Run is a blocking convenience wrapper: it starts a session and waits for a
// terminal state. Cancellation of ctx yields Canceled without error.
func Run(ctx context.Context, cfg Config) (State, error) {
	s := NewSession(cfg)
	if err := s.Start(ctx); err != nil {
		return Idle, err
	}
	<-s.Done()
	return s.State(), nil
}
