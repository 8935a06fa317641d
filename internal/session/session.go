package session

import (
	"errors"
	"sync"
	"time"
)

// DefaultDuration is the inactivity countdown, in ticks, for a new session.
const DefaultDuration = 600

// ErrInvalidDuration is returned by Start for a non-positive duration.
var ErrInvalidDuration = errors.New("session duration must be positive")

// State is the lifecycle state of a Session.
type State int

const (
	StateActive State = iota
	StateExpired
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason says why a session ended.
type Reason string

const (
	ReasonExpired       Reason = "expired"
	ReasonUserLogout    Reason = "user-logout"
	ReasonAccountClosed Reason = "account-closed"
	// ReasonReplaced marks a session cancelled by a newer Start. It is never
	// delivered to the end callback.
	ReasonReplaced Reason = "replaced"
)

// Ended is delivered to the end callback exactly once per ended session.
type Ended struct {
	SessionID string
	AccountID string
	Reason    Reason
	At        time.Time
}

// Session is one logged-in period for one account. The account is held by
// ID only; the ledger keeps ownership.
type Session struct {
	mu        sync.Mutex
	id        string
	accountID string
	duration  int
	remaining int
	state     State
	reason    Reason
	onEnd     func(Ended)
	now       func() time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AccountID returns the ID of the bound account.
func (s *Session) AccountID() string {
	return s.accountID
}

// Duration returns the configured countdown length.
func (s *Session) Duration() int {
	return s.duration
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason returns why the session ended, or "" while active.
func (s *Session) Reason() Reason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Remaining returns the ticks left before expiry.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Active reports whether the session is still running.
func (s *Session) Active() bool {
	return s.State() == StateActive
}

// Reset restarts the countdown. It is a no-op returning false once the
// session has ended.
func (s *Session) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	s.remaining = s.duration
	return true
}

// Tick advances the countdown by one. Reports whether this tick expired the
// session, in which case the end callback has been invoked.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	ev := s.endLocked(StateExpired, ReasonExpired)
	s.mu.Unlock()

	s.fire(ev)
	return true
}

// Terminate ends an active session with reason and invokes the end callback.
// Reports false if the session had already ended.
func (s *Session) Terminate(reason Reason) bool {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return false
	}
	ev := s.endLocked(StateTerminated, reason)
	s.mu.Unlock()

	s.fire(ev)
	return true
}

// cancel ends the session without notifying anyone.
func (s *Session) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateActive {
		s.endLocked(StateTerminated, ReasonReplaced)
	}
}

func (s *Session) endLocked(state State, reason Reason) Ended {
	s.state = state
	s.reason = reason
	s.remaining = 0
	return Ended{SessionID: s.id, AccountID: s.accountID, Reason: reason, At: s.now()}
}

func (s *Session) fire(ev Ended) {
	if s.onEnd != nil {
		s.onEnd(ev)
	}
}
