package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bankist-dev/bankist/internal/bankist"
	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/id"
	"github.com/bankist-dev/bankist/internal/session"
)

// terminal draws the dashboard as plain text. Writes are serialized because
// timer goroutines render alongside the input loop.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, now: time.Now}
}

func (t *terminal) printf(msg string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, msg, args...)
}

// Render implements bankist.Renderer.
func (t *terminal) Render(d bankist.Dashboard) {
	now := t.now()
	v := d.View

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s, %s!\n", format.Greeting(now.Hour()), id.FirstName(v.Owner))
	fmt.Fprintf(&b, "As of %s\n", format.DateTime(now))
	fmt.Fprintf(&b, "Current balance  %s\n\n", format.Money(v.Balance, v.Currency, v.Locale))

	order := "chronological"
	if d.Sorted {
		order = "sorted by amount"
	}
	fmt.Fprintf(&b, "Movements (%s)\n", order)
	for i, txn := range d.Transactions {
		kind := "DEPOSIT"
		if !txn.IsDeposit() {
			kind = "WITHDRAWAL"
		}
		fmt.Fprintf(&b, "  %2d %-10s  %-12s %14s\n", i+1, kind,
			format.DaysAgo(txn.Timestamp, now),
			format.Money(txn.Amount, v.Currency, v.Locale))
	}

	fmt.Fprintf(&b, "\nIn %s  Out %s  Interest %s\n",
		format.Money(v.Summary.Inflow, v.Currency, v.Locale),
		format.Money(v.Summary.Outflow, v.Currency, v.Locale),
		format.Money(v.Summary.Interest, v.Currency, v.Locale))
	fmt.Fprintf(&b, "You will be logged out in %s\n", format.Countdown(d.Remaining))

	t.printf("%s", b.String())
}

// SessionEnded implements bankist.Renderer.
func (t *terminal) SessionEnded(ev session.Ended) {
	switch ev.Reason {
	case session.ReasonExpired:
		t.printf("\nSession expired. Log in to get started.\n")
	case session.ReasonAccountClosed:
		t.printf("\nAccount %s closed. Log in to get started.\n", ev.AccountID)
	default:
		t.printf("\nLogged out. Log in to get started.\n")
	}
}
