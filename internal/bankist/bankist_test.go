package bankist

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankist-dev/bankist/internal/accounts"
	"github.com/bankist-dev/bankist/internal/activitylog"
	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/session"
)

type fakeRenderer struct {
	mu     sync.Mutex
	frames []Dashboard
	ended  []session.Ended
}

func (f *fakeRenderer) Render(d Dashboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, d)
}

func (f *fakeRenderer) SessionEnded(ev session.Ended) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, ev)
}

func (f *fakeRenderer) last() Dashboard {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func (f *fakeRenderer) renders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

type harness struct {
	svc      *Service
	sched    *ledger.ManualScheduler
	renderer *fakeRenderer
	log      *activitylog.MemoryRecorder
}

func newHarness(t *testing.T, duration int) *harness {
	t.Helper()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	h := &harness{
		sched:    ledger.NewManualScheduler(),
		renderer: &fakeRenderer{},
		log:      &activitylog.MemoryRecorder{},
	}
	l, err := ledger.New(accounts.DefaultFixture(),
		ledger.WithScheduler(h.sched),
		ledger.WithClock(now),
		ledger.WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	require.NoError(t, err)

	h.svc = New(l, h.renderer,
		WithRecorder(h.log),
		WithClock(now),
		WithSessionDuration(duration),
	)
	return h
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestLogin(t *testing.T) {
	h := newHarness(t, 600)

	require.NoError(t, h.svc.Login("js", "1111"))
	require.Equal(t, 1, h.renderer.renders())

	d := h.renderer.last()
	assert.Equal(t, "js", d.View.AccountID)
	assert.True(t, dec(3840).Equal(d.View.Balance))
	assert.Equal(t, 600, d.Remaining)
	assert.False(t, d.Sorted)
	assert.NotEmpty(t, d.SessionID)
	assert.Equal(t, []activitylog.Action{activitylog.ActionLogin}, h.log.Actions())
}

func TestLogin_NormalizesLogin(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("  STW ", "3333"))

	d, err := h.svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "stw", d.View.AccountID)
}

func TestLogin_Failure(t *testing.T) {
	h := newHarness(t, 600)

	err := h.svc.Login("js", "2222")
	assert.ErrorIs(t, err, ledger.ErrCredentialsNotFound)
	assert.Zero(t, h.renderer.renders())

	_, err = h.svc.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	entries := h.log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, activitylog.ActionLoginFailed, entries[0].Action)
	assert.Equal(t, "js", entries[0].AccountID)
	assert.NotContains(t, entries[0].Details, "2222")
}

func TestLogin_ReplacesSessionSilently(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))
	require.NoError(t, h.svc.Login("jd", "2222"))

	d, err := h.svc.Current()
	require.NoError(t, err)
	assert.Equal(t, "jd", d.View.AccountID)
	assert.Empty(t, h.renderer.ended)
}

func TestActionsRequireSession(t *testing.T) {
	h := newHarness(t, 600)

	assert.ErrorIs(t, h.svc.Transfer("jd", dec(1)), ErrNoSession)
	_, err := h.svc.RequestLoan(dec(1))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, h.svc.CloseAccount("js", "1111"), ErrNoSession)
	assert.ErrorIs(t, h.svc.ToggleSort(), ErrNoSession)
	assert.ErrorIs(t, h.svc.Logout(), ErrNoSession)
	assert.Zero(t, h.svc.Remaining())
}

func TestTransfer_ResetsCountdown(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))

	for range 100 {
		h.svc.Tick()
	}
	assert.Equal(t, 500, h.svc.Remaining())

	require.NoError(t, h.svc.Transfer(" JD ", dec(100)))
	assert.Equal(t, 600, h.svc.Remaining())

	d := h.renderer.last()
	assert.True(t, dec(3740).Equal(d.View.Balance))
	assert.Equal(t, 600, d.Remaining)

	jd, err := h.svc.Ledger().BalanceOf("jd")
	require.NoError(t, err)
	assert.True(t, dec(11820).Equal(jd))

	assert.Equal(t, activitylog.ActionTransfer, h.log.Actions()[1])
}

func TestTransfer_RejectedKeepsCountdown(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))
	h.svc.Tick()
	renders := h.renderer.renders()

	err := h.svc.Transfer("jd", dec(5000))
	assert.ErrorIs(t, err, ledger.ErrInvalidTransfer)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, 599, h.svc.Remaining())
	assert.Equal(t, renders, h.renderer.renders())

	entries := h.log.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, activitylog.ActionTransferRejected, last.Action)
	assert.Contains(t, last.Details, "insufficient funds")
}

func TestRequestLoan_PostsLater(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))

	delay, err := h.svc.RequestLoan(dec(1000))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, delay, ledger.DefaultLoanDelayMin)
	assert.Less(t, delay, ledger.DefaultLoanDelayMax)
	assert.Equal(t, 1, h.sched.Pending())

	before, err := h.svc.Current()
	require.NoError(t, err)
	assert.True(t, dec(3840).Equal(before.View.Balance), "loan is not posted immediately")

	assert.Equal(t, 1, h.sched.Advance(ledger.DefaultLoanDelayMax))

	d := h.renderer.last()
	assert.True(t, dec(4840).Equal(d.View.Balance))
	assert.Contains(t, h.log.Actions(), activitylog.ActionLoanPosted)
}

func TestRequestLoan_Rejected(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("jd", "2222"))

	// Largest jd deposit is 8500, so 10% of 100000 is not covered.
	_, err := h.svc.RequestLoan(dec(100000))
	assert.ErrorIs(t, err, ledger.ErrLoanRejected)
	assert.Zero(t, h.sched.Pending())

	actions := h.log.Actions()
	assert.Equal(t, activitylog.ActionLoanRejected, actions[len(actions)-1])
}

func TestCloseAccount(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))
	_, err := h.svc.RequestLoan(dec(1000))
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.CloseAccount("jd", "2222"), ErrCloseCredentials)
	assert.ErrorIs(t, h.svc.CloseAccount("js", "9999"), ErrCloseCredentials)
	assert.True(t, h.svc.Ledger().Exists("js"))

	require.NoError(t, h.svc.CloseAccount(" js", "1111"))
	assert.False(t, h.svc.Ledger().Exists("js"))

	require.Len(t, h.renderer.ended, 1)
	assert.Equal(t, session.ReasonAccountClosed, h.renderer.ended[0].Reason)
	_, err = h.svc.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	// The pending loan is dropped.
	h.sched.Advance(time.Minute)
	assert.NotContains(t, h.log.Actions(), activitylog.ActionLoanPosted)

	assert.ErrorIs(t, h.svc.Login("js", "1111"), ledger.ErrCredentialsNotFound)
	assert.Contains(t, h.log.Actions(), activitylog.ActionAccountClosed)
}

func TestExpiry(t *testing.T) {
	h := newHarness(t, 3)
	require.NoError(t, h.svc.Login("ss", "4444"))

	h.svc.Tick()
	h.svc.Tick()
	assert.Empty(t, h.renderer.ended)
	h.svc.Tick()

	require.Len(t, h.renderer.ended, 1)
	assert.Equal(t, session.ReasonExpired, h.renderer.ended[0].Reason)
	assert.Equal(t, "ss", h.renderer.ended[0].AccountID)

	h.svc.Tick()
	assert.Len(t, h.renderer.ended, 1)
	assert.Equal(t, []activitylog.Action{activitylog.ActionLogin, activitylog.ActionExpired}, h.log.Actions())
}

func TestLogout(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))
	require.NoError(t, h.svc.Logout())

	require.Len(t, h.renderer.ended, 1)
	assert.Equal(t, session.ReasonUserLogout, h.renderer.ended[0].Reason)
	assert.ErrorIs(t, h.svc.Logout(), ErrNoSession)
	assert.Equal(t, activitylog.ActionLogout, h.log.Actions()[1])
}

func TestToggleSort(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))

	require.NoError(t, h.svc.ToggleSort())
	d := h.renderer.last()
	assert.True(t, d.Sorted)
	assert.True(t, dec(-650).Equal(d.Transactions[0].Amount))
	assert.True(t, dec(3000).Equal(d.Transactions[len(d.Transactions)-1].Amount))
	// The view itself stays chronological.
	assert.True(t, dec(200).Equal(d.View.Transactions[0].Amount))

	require.NoError(t, h.svc.ToggleSort())
	d = h.renderer.last()
	assert.False(t, d.Sorted)
	assert.True(t, dec(200).Equal(d.Transactions[0].Amount))
}

func TestLogin_ResetsSort(t *testing.T) {
	h := newHarness(t, 600)
	require.NoError(t, h.svc.Login("js", "1111"))
	require.NoError(t, h.svc.ToggleSort())
	require.NoError(t, h.svc.Login("jd", "2222"))
	assert.False(t, h.renderer.last().Sorted)
}
