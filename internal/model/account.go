package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Account is one customer account in the ledger.
type Account struct {
	ID           string // login identifier, e.g. "js"
	Owner        string
	PIN          string          // compared by equality only, never logged
	Currency     string          // ISO-4217 code, display only
	Locale       string          // BCP-47 tag for number formatting, e.g. "de-DE"
	InterestRate decimal.Decimal // percent
	Transactions []Transaction
}

// Balance returns the sum of all transaction amounts. An account with no
// transactions has a zero balance.
func (a Account) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, t := range a.Transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// Summary holds the derived totals shown beneath the transaction list.
type Summary struct {
	Inflow   decimal.Decimal
	Outflow  decimal.Decimal // absolute value of the sum of negative amounts
	Interest decimal.Decimal
}

// Summarize computes inflow, outflow, and interest. Interest is paid on the
// total inflow, not per deposit.
func (a Account) Summarize() Summary {
	in, out := decimal.Zero, decimal.Zero
	for _, t := range a.Transactions {
		if t.Amount.IsNegative() {
			out = out.Add(t.Amount)
			continue
		}
		in = in.Add(t.Amount)
	}
	return Summary{
		Inflow:   in,
		Outflow:  out.Abs(),
		Interest: in.Mul(a.InterestRate).Div(decimal.NewFromInt(100)),
	}
}

// Clone returns a copy that shares no transaction storage with a.
func (a Account) Clone() Account {
	a.Transactions = slices.Clone(a.Transactions)
	return a
}

// View is the derived state handed to a renderer after a change.
type View struct {
	AccountID    string
	Owner        string
	Currency     string
	Locale       string
	Balance      decimal.Decimal
	Transactions []Transaction // chronological
	Summary      Summary
}

// NewView derives a View from an account snapshot.
func NewView(a Account) View {
	return View{
		AccountID:    a.ID,
		Owner:        a.Owner,
		Currency:     a.Currency,
		Locale:       a.Locale,
		Balance:      a.Balance(),
		Transactions: slices.Clone(a.Transactions),
		Summary:      a.Summarize(),
	}
}

// Sorted returns the transactions ordered by amount. The chronological order
// in v is left untouched.
func (v View) Sorted(ascending bool) []Transaction {
	out := slices.Clone(v.Transactions)
	slices.SortStableFunc(out, func(x, y Transaction) int {
		if ascending {
			return x.Amount.Cmp(y.Amount)
		}
		return y.Amount.Cmp(x.Amount)
	})
	return out
}
