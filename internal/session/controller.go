package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ticker is the timer facility that drives Tick at a fixed cadence.
// Start begins calling tick and returns a function that stops it.
type Ticker interface {
	Start(tick func()) (stop func())
}

// IntervalTicker calls tick once per Interval from its own goroutine.
type IntervalTicker struct {
	Interval time.Duration
}

// Start implements Ticker.
func (it IntervalTicker) Start(tick func()) func() {
	interval := it.Interval
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-t.C:
				tick()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

// Controller owns the single process-wide session.
type Controller struct {
	mu      sync.Mutex
	current *Session
	stop    func()

	onEnd  func(Ended)
	ticker Ticker
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithTicker sets the timer facility. Without one, ticks must be driven by
// calling Tick directly.
func WithTicker(t Ticker) Option {
	return func(c *Controller) { c.ticker = t }
}

// WithClock sets the time source stamped on Ended events.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger.With("component", "session") }
}

// NewController creates a Controller that reports every expiry and
// termination to onEnd.
func NewController(onEnd func(Ended), opts ...Option) *Controller {
	c := &Controller{
		onEnd:  onEnd,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a fresh session for accountID, cancelling any previous one
// without notifying the end callback.
func (c *Controller) Start(accountID string, durationSeconds int) (*Session, error) {
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	s := &Session{
		id:        c.newID(),
		accountID: accountID,
		duration:  durationSeconds,
		remaining: durationSeconds,
		state:     StateActive,
		now:       c.now,
	}
	s.onEnd = func(ev Ended) { c.ended(s, ev) }

	c.mu.Lock()
	prev, prevStop := c.current, c.stop
	c.current, c.stop = s, nil
	c.mu.Unlock()

	if prevStop != nil {
		prevStop()
	}
	if prev != nil {
		prev.cancel()
		c.logger.Debug("session replaced", "session", prev.ID(), "account", prev.AccountID())
	}

	if c.ticker != nil {
		stop := c.ticker.Start(func() { s.Tick() })
		c.mu.Lock()
		if c.current == s && s.Active() {
			c.stop = stop
			stop = nil
		}
		c.mu.Unlock()
		if stop != nil {
			stop()
		}
	}

	c.logger.Info("session started", "session", s.ID(), "account", accountID, "duration", durationSeconds)
	return s, nil
}

// Current returns the active session, or nil when nobody is logged in.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s == nil || !s.Active() {
		return nil
	}
	return s
}

// Reset restarts the current session's countdown. No-op without one.
func (c *Controller) Reset() bool {
	if s := c.Current(); s != nil {
		return s.Reset()
	}
	return false
}

// Tick advances the current session's countdown. No-op without one.
func (c *Controller) Tick() bool {
	if s := c.Current(); s != nil {
		return s.Tick()
	}
	return false
}

// Terminate ends the current session with reason. No-op without one.
func (c *Controller) Terminate(reason Reason) bool {
	if s := c.Current(); s != nil {
		return s.Terminate(reason)
	}
	return false
}

func (c *Controller) ended(s *Session, ev Ended) {
	c.mu.Lock()
	var stop func()
	if c.current == s {
		c.current = nil
		stop, c.stop = c.stop, nil
	}
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.logger.Info("session ended", "session", ev.SessionID, "account", ev.AccountID, "reason", string(ev.Reason))
	if c.onEnd != nil {
		c.onEnd(ev)
	}
}
