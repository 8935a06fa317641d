package ledger

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/model"
)

// Default loan policy values.
const (
	DefaultCoveragePercent = 10
	DefaultLoanDelayMin    = 1000 * time.Millisecond
	DefaultLoanDelayMax    = 3000 * time.Millisecond
)

// Cause describes the mutation behind a Changed event.
type Cause string

const (
	CauseTransferOut Cause = "transfer-out"
	CauseTransferIn  Cause = "transfer-in"
	CauseLoan        Cause = "loan"
	CauseClosed      Cause = "closed"
)

// Changed is emitted after a successful mutation, once per mutated account.
// For CauseClosed the View carries only the AccountID.
type Changed struct {
	AccountID string
	View      model.View
	Cause     Cause
}

// Ledger is the authoritative store of accounts and their transaction
// histories. All reads and writes are serialized by a single mutex.
type Ledger struct {
	mu        sync.Mutex
	order     []*entry
	byID      map[string]*entry
	observers []func(Changed)
	lastStamp time.Time

	scheduler Scheduler
	now       func() time.Time
	randN     func(n int64) int64
	newID     func() string
	coverage  decimal.Decimal // fraction of the loan a past deposit must cover
	delayMin  time.Duration
	delayMax  time.Duration
	logger    *slog.Logger
}

type entry struct {
	account model.Account
	closed  bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithScheduler sets the deferred-task scheduler used for loan posting.
func WithScheduler(s Scheduler) Option {
	return func(l *Ledger) { l.scheduler = s }
}

// WithClock sets the time source for appended transactions.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRand sets the random source used to draw loan delays.
func WithRand(r *rand.Rand) Option {
	return func(l *Ledger) { l.randN = r.Int64N }
}

// WithLoanPolicy sets the coverage percentage and the delay window
// [min, max) for posting accepted loans.
func WithLoanPolicy(coveragePercent decimal.Decimal, minDelay, maxDelay time.Duration) Option {
	return func(l *Ledger) {
		l.coverage = coveragePercent.Div(decimal.NewFromInt(100))
		l.delayMin = minDelay
		l.delayMax = maxDelay
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger.With("component", "ledger") }
}

// WithIDGenerator sets the transaction ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// New creates a Ledger holding copies of accounts in the given order.
func New(accounts []model.Account, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		byID:     make(map[string]*entry, len(accounts)),
		now:      time.Now,
		randN:    rand.Int64N,
		newID:    uuid.NewString,
		coverage: decimal.NewFromInt(DefaultCoveragePercent).Div(decimal.NewFromInt(100)),
		delayMin: DefaultLoanDelayMin,
		delayMax: DefaultLoanDelayMax,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.scheduler == nil {
		l.scheduler = NewTimerScheduler()
	}
	if l.delayMax <= l.delayMin {
		return nil, fmt.Errorf("loan delay window [%s, %s) is empty", l.delayMin, l.delayMax)
	}

	for _, a := range accounts {
		if _, ok := l.byID[a.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, a.ID)
		}
		e := &entry{account: a.Clone()}
		l.order = append(l.order, e)
		l.byID[a.ID] = e
	}
	return l, nil
}

// Subscribe registers fn to receive Changed events. Observers are called
// after the ledger lock is released, in registration order.
func (l *Ledger) Subscribe(fn func(Changed)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// FindByCredentials returns the first account in store order whose ID and
// PIN both match exactly.
func (l *Ledger) FindByCredentials(loginID, pin string) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.order {
		if e.account.ID == loginID && e.account.PIN == pin {
			return e.account.Clone(), nil
		}
	}
	return model.Account{}, ErrCredentialsNotFound
}

// Get returns a snapshot of an account.
func (l *Ledger) Get(id string) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byID[id]
	if !ok {
		return model.Account{}, ErrAccountNotFound
	}
	return e.account.Clone(), nil
}

// Exists reports whether an account ID is in the store.
func (l *Ledger) Exists(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byID[id]
	return ok
}

// Accounts returns snapshots of all accounts in store order.
func (l *Ledger) Accounts() []model.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Account, len(l.order))
	for i, e := range l.order {
		out[i] = e.account.Clone()
	}
	return out
}

// BalanceOf returns the sum of an account's transaction amounts. An account
// with no transactions has a zero balance.
func (l *Ledger) BalanceOf(id string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byID[id]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}
	return e.account.Balance(), nil
}

// Summarize returns inflow, outflow, and interest totals for an account.
func (l *Ledger) Summarize(id string) (model.Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byID[id]
	if !ok {
		return model.Summary{}, ErrAccountNotFound
	}
	return e.account.Summarize(), nil
}

// View returns the derived render view for an account.
func (l *Ledger) View(id string) (model.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byID[id]
	if !ok {
		return model.View{}, ErrAccountNotFound
	}
	return model.NewView(e.account), nil
}

// TransferOut moves amount from source to destination. Either both the
// debit and the credit are appended or neither is.
func (l *Ledger) TransferOut(sourceID, destinationID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrNonPositiveAmount)
	}
	if !model.WholeCents(amount) {
		return fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrSubCentAmount)
	}
	if sourceID == destinationID {
		return fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrSelfTransfer)
	}

	l.mu.Lock()
	src, ok := l.byID[sourceID]
	if !ok {
		l.mu.Unlock()
		return ErrAccountNotFound
	}
	dst, ok := l.byID[destinationID]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrUnknownDestination)
	}
	if amount.GreaterThan(src.account.Balance()) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrInsufficientFunds)
	}

	at := l.stamp()
	src.account.Transactions = append(src.account.Transactions, model.Transaction{
		ID:           l.newID(),
		Amount:       amount.Neg(),
		Timestamp:    at,
		Kind:         model.KindTransferOut,
		Counterparty: destinationID,
	})
	dst.account.Transactions = append(dst.account.Transactions, model.Transaction{
		ID:           l.newID(),
		Amount:       amount,
		Timestamp:    at,
		Kind:         model.KindTransferIn,
		Counterparty: sourceID,
	})
	events := []Changed{
		{AccountID: sourceID, View: model.NewView(src.account), Cause: CauseTransferOut},
		{AccountID: destinationID, View: model.NewView(dst.account), Cause: CauseTransferIn},
	}
	observers := l.observers
	l.mu.Unlock()

	l.logger.Info("transfer posted", "from", sourceID, "to", destinationID, "amount", amount.String())
	notify(observers, events...)
	return nil
}

// RequestLoan applies the coverage rule: the loan is accepted when amount is
// positive, in whole cents, and at least one past transaction is
// >= amount * coverage.
// Accepted loans are posted by the scheduler after a random delay, which is
// returned. Rejections never mutate the account or schedule anything.
func (l *Ledger) RequestLoan(id string, amount decimal.Decimal) (time.Duration, error) {
	l.mu.Lock()
	e, ok := l.byID[id]
	if !ok {
		l.mu.Unlock()
		return 0, ErrAccountNotFound
	}
	if !model.WholeCents(amount) {
		l.mu.Unlock()
		l.logger.Info("loan rejected", "account", id, "amount", amount.String())
		return 0, fmt.Errorf("%w: %w", ErrLoanRejected, ErrSubCentAmount)
	}
	if !amount.IsPositive() || !covered(e.account.Transactions, amount.Mul(l.coverage)) {
		l.mu.Unlock()
		l.logger.Info("loan rejected", "account", id, "amount", amount.String())
		return 0, ErrLoanRejected
	}
	delay := l.delayMin + time.Duration(l.randN(int64(l.delayMax-l.delayMin)))
	l.mu.Unlock()

	l.logger.Info("loan accepted", "account", id, "amount", amount.String(), "delay", delay)
	l.scheduler.After(delay, func() { l.postLoan(e, amount) })
	return delay, nil
}

func covered(txns []model.Transaction, required decimal.Decimal) bool {
	for _, t := range txns {
		if t.Amount.GreaterThanOrEqual(required) {
			return true
		}
	}
	return false
}

// postLoan appends an accepted loan unless the account was closed while the
// loan was pending.
func (l *Ledger) postLoan(e *entry, amount decimal.Decimal) {
	l.mu.Lock()
	if e.closed {
		l.mu.Unlock()
		l.logger.Info("pending loan discarded", "account", e.account.ID, "amount", amount.String())
		return
	}
	e.account.Transactions = append(e.account.Transactions, model.Transaction{
		ID:        l.newID(),
		Amount:    amount,
		Timestamp: l.stamp(),
		Kind:      model.KindLoan,
	})
	ev := Changed{AccountID: e.account.ID, View: model.NewView(e.account), Cause: CauseLoan}
	observers := l.observers
	l.mu.Unlock()

	l.logger.Info("loan posted", "account", ev.AccountID, "amount", amount.String())
	notify(observers, ev)
}

// CloseAccount removes an account from the store permanently.
func (l *Ledger) CloseAccount(id string) error {
	l.mu.Lock()
	e, ok := l.byID[id]
	if !ok {
		l.mu.Unlock()
		return ErrAccountNotFound
	}
	e.closed = true
	delete(l.byID, id)
	for i, o := range l.order {
		if o == e {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	observers := l.observers
	l.mu.Unlock()

	l.logger.Info("account closed", "account", id)
	notify(observers, Changed{AccountID: id, View: model.View{AccountID: id}, Cause: CauseClosed})
	return nil
}

// stamp returns the current time, never earlier than the previous stamp.
// Callers must hold l.mu.
func (l *Ledger) stamp() time.Time {
	now := l.now()
	if now.Before(l.lastStamp) {
		now = l.lastStamp
	}
	l.lastStamp = now
	return now
}

func notify(observers []func(Changed), events ...Changed) {
	for _, ev := range events {
		for _, fn := range observers {
			fn(ev)
		}
	}
}
