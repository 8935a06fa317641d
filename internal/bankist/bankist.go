// Package bankist ties the ledger, the session controller and the activity
// log together behind the operations a dashboard exposes.
package bankist

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/activitylog"
	"github.com/bankist-dev/bankist/internal/id"
	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/model"
	"github.com/bankist-dev/bankist/internal/session"
)

var (
	// ErrNoSession is returned by account actions when nobody is logged in.
	ErrNoSession = errors.New("not logged in")

	// ErrCloseCredentials is returned when the login and PIN given to close
	// an account do not match the logged-in account.
	ErrCloseCredentials = errors.New("close credentials do not match the current account")
)

// Dashboard is everything a renderer needs to draw the logged-in screen.
type Dashboard struct {
	SessionID    string
	View         model.View
	Transactions []model.Transaction // display order
	Sorted       bool
	Remaining    int
}

// Renderer draws the dashboard. Both methods may be called from timer
// goroutines.
type Renderer interface {
	Render(d Dashboard)
	SessionEnded(ev session.Ended)
}

// Service is the dashboard's entry point.
type Service struct {
	ledger   *ledger.Ledger
	sessions *session.Controller
	renderer Renderer
	recorder activitylog.Recorder
	logger   *slog.Logger
	now      func() time.Time
	duration int

	mu     sync.Mutex
	sorted bool

	sessionOpts []session.Option
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the activity log sink.
func WithRecorder(r activitylog.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the structured logger. The session controller shares it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With("component", "dashboard")
		s.sessionOpts = append(s.sessionOpts, session.WithLogger(logger))
	}
}

// WithClock sets the time source for activity entries and session events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.sessionOpts = append(s.sessionOpts, session.WithClock(now))
	}
}

// WithTicker drives the session countdown. Without it ticks must come from
// Tick.
func WithTicker(t session.Ticker) Option {
	return func(s *Service) { s.sessionOpts = append(s.sessionOpts, session.WithTicker(t)) }
}

// WithSessionDuration sets the inactivity countdown, in ticks.
func WithSessionDuration(seconds int) Option {
	return func(s *Service) { s.duration = seconds }
}

// New creates a Service over l that draws through r.
func New(l *ledger.Ledger, r Renderer, opts ...Option) *Service {
	s := &Service{
		ledger:   l,
		renderer: r,
		recorder: &activitylog.MemoryRecorder{},
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		duration: session.DefaultDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = session.NewController(s.sessionEnded, s.sessionOpts...)
	l.Subscribe(s.ledgerChanged)
	return s
}

// Login resolves credentials and starts a session, replacing any current one.
// The login is trimmed and lowercased first; the PIN is compared as typed.
func (s *Service) Login(loginID, pin string) error {
	login := id.NormalizeLogin(loginID)
	acct, err := s.ledger.FindByCredentials(login, pin)
	if err != nil {
		s.record("", login, activitylog.ActionLoginFailed, "")
		return err
	}

	sess, err := s.sessions.Start(acct.ID, s.duration)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	s.mu.Lock()
	s.sorted = false
	s.mu.Unlock()

	s.record(sess.ID(), acct.ID, activitylog.ActionLogin, "")
	s.render(sess)
	return nil
}

// Logout ends the current session.
func (s *Service) Logout() error {
	if !s.sessions.Terminate(session.ReasonUserLogout) {
		return ErrNoSession
	}
	return nil
}

// Transfer moves amount from the logged-in account to another account.
func (s *Service) Transfer(to string, amount decimal.Decimal) error {
	sess := s.sessions.Current()
	if sess == nil {
		return ErrNoSession
	}

	dest := id.NormalizeLogin(to)
	if err := s.ledger.TransferOut(sess.AccountID(), dest, amount); err != nil {
		s.record(sess.ID(), sess.AccountID(), activitylog.ActionTransferRejected,
			fmt.Sprintf("to=%s amount=%s reason=%v", dest, amount, err))
		return err
	}

	s.sessions.Reset()
	s.record(sess.ID(), sess.AccountID(), activitylog.ActionTransfer, fmt.Sprintf("to=%s amount=%s", dest, amount))
	s.render(sess)
	return nil
}

// RequestLoan asks the ledger for a loan on the logged-in account. An accepted
// loan is posted later; the returned delay says when.
func (s *Service) RequestLoan(amount decimal.Decimal) (time.Duration, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return 0, ErrNoSession
	}

	delay, err := s.ledger.RequestLoan(sess.AccountID(), amount)
	if err != nil {
		s.record(sess.ID(), sess.AccountID(), activitylog.ActionLoanRejected, fmt.Sprintf("amount=%s", amount))
		return 0, err
	}

	s.sessions.Reset()
	s.record(sess.ID(), sess.AccountID(), activitylog.ActionLoanRequested,
		fmt.Sprintf("amount=%s delay=%s", amount, delay))
	s.render(sess)
	return delay, nil
}

// CloseAccount permanently removes the logged-in account. The caller must
// re-enter that account's login and PIN.
func (s *Service) CloseAccount(loginID, pin string) error {
	sess := s.sessions.Current()
	if sess == nil {
		return ErrNoSession
	}

	login := id.NormalizeLogin(loginID)
	if login != sess.AccountID() {
		s.record(sess.ID(), sess.AccountID(), activitylog.ActionCloseRejected, "")
		return ErrCloseCredentials
	}
	if _, err := s.ledger.FindByCredentials(login, pin); err != nil {
		s.record(sess.ID(), sess.AccountID(), activitylog.ActionCloseRejected, "")
		return ErrCloseCredentials
	}

	if err := s.ledger.CloseAccount(login); err != nil {
		return fmt.Errorf("closing account: %w", err)
	}
	sess.Terminate(session.ReasonAccountClosed)
	return nil
}

// ToggleSort flips the transaction list between chronological order and
// ascending amount, then redraws.
func (s *Service) ToggleSort() error {
	sess := s.sessions.Current()
	if sess == nil {
		return ErrNoSession
	}
	s.mu.Lock()
	s.sorted = !s.sorted
	s.mu.Unlock()

	s.render(sess)
	return nil
}

// Current returns the dashboard for the logged-in account.
func (s *Service) Current() (Dashboard, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return Dashboard{}, ErrNoSession
	}
	return s.dashboard(sess)
}

// Tick advances the session countdown by one. It is what a Ticker calls.
func (s *Service) Tick() {
	s.sessions.Tick()
}

// Remaining returns the seconds left in the current session, or 0.
func (s *Service) Remaining() int {
	if sess := s.sessions.Current(); sess != nil {
		return sess.Remaining()
	}
	return 0
}

// Ledger returns the underlying ledger.
func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

func (s *Service) dashboard(sess *session.Session) (Dashboard, error) {
	view, err := s.ledger.View(sess.AccountID())
	if err != nil {
		return Dashboard{}, err
	}

	s.mu.Lock()
	sorted := s.sorted
	s.mu.Unlock()

	txns := view.Transactions
	if sorted {
		txns = view.Sorted(true)
	}
	return Dashboard{
		SessionID:    sess.ID(),
		View:         view,
		Transactions: txns,
		Sorted:       sorted,
		Remaining:    sess.Remaining(),
	}, nil
}

func (s *Service) render(sess *session.Session) {
	if s.renderer == nil || !sess.Active() {
		return
	}
	d, err := s.dashboard(sess)
	if err != nil {
		s.logger.Debug("skipping render", "account", sess.AccountID(), "error", err)
		return
	}
	s.renderer.Render(d)
}

// ledgerChanged redraws for changes the user did not trigger directly, such
// as a loan posted after its delay.
func (s *Service) ledgerChanged(ev ledger.Changed) {
	sess := s.sessions.Current()

	if ev.Cause == ledger.CauseLoan {
		sessionID := ""
		if sess != nil && sess.AccountID() == ev.AccountID {
			sessionID = sess.ID()
		}
		s.record(sessionID, ev.AccountID, activitylog.ActionLoanPosted, fmt.Sprintf("balance=%s", ev.View.Balance))
	}

	if sess == nil || sess.AccountID() != ev.AccountID {
		return
	}
	switch ev.Cause {
	case ledger.CauseLoan, ledger.CauseTransferIn:
		s.render(sess)
	}
}

func (s *Service) sessionEnded(ev session.Ended) {
	action := activitylog.ActionLogout
	switch ev.Reason {
	case session.ReasonExpired:
		action = activitylog.ActionExpired
	case session.ReasonAccountClosed:
		action = activitylog.ActionAccountClosed
	}
	s.record(ev.SessionID, ev.AccountID, action, "")

	if s.renderer != nil {
		s.renderer.SessionEnded(ev)
	}
}

func (s *Service) record(sessionID, accountID string, action activitylog.Action, details string) {
	err := s.recorder.Record(activitylog.Entry{
		Timestamp: s.now(),
		SessionID: sessionID,
		AccountID: accountID,
		Action:    action,
		Details:   details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", string(action), "error", err)
	}
}
