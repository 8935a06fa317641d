package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amounts(vals ...int64) []Transaction {
	txns := make([]Transaction, len(vals))
	for i, v := range vals {
		txns[i] = Transaction{Amount: decimal.NewFromInt(v), Timestamp: time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC)}
	}
	return txns
}

func TestBalance(t *testing.T) {
	acct := Account{Transactions: amounts(200, 450, -400, 3000, -650, -130, 70, 1300)}
	assert.True(t, acct.Balance().Equal(decimal.NewFromInt(3840)), "got %s", acct.Balance())
}

func TestBalance_Empty(t *testing.T) {
	var acct Account
	assert.True(t, acct.Balance().IsZero())

	sum := acct.Summarize()
	assert.True(t, sum.Inflow.IsZero())
	assert.True(t, sum.Outflow.IsZero())
	assert.True(t, sum.Interest.IsZero())
}

func TestSummarize(t *testing.T) {
	acct := Account{
		InterestRate: decimal.RequireFromString("1.2"),
		Transactions: amounts(200, 450, -400, 3000, -650, -130, 70, 1300),
	}

	sum := acct.Summarize()
	assert.Equal(t, "5020.00", sum.Inflow.StringFixed(2))
	assert.Equal(t, "1180.00", sum.Outflow.StringFixed(2))
	// Interest is paid on total inflow: 5020 * 1.2%.
	assert.Equal(t, "60.24", sum.Interest.StringFixed(2))
}

func TestSummarize_ZeroCountsAsInflow(t *testing.T) {
	acct := Account{InterestRate: decimal.NewFromInt(1), Transactions: amounts(0, -5)}
	sum := acct.Summarize()
	assert.True(t, sum.Inflow.IsZero())
	assert.Equal(t, "5", sum.Outflow.String())
}

func TestClone(t *testing.T) {
	acct := Account{ID: "js", Transactions: amounts(100)}
	cp := acct.Clone()
	cp.Transactions[0].Amount = decimal.NewFromInt(1)
	assert.Equal(t, "100", acct.Transactions[0].Amount.String())
}

func TestViewSorted(t *testing.T) {
	v := NewView(Account{ID: "js", Transactions: amounts(200, -50, 1000, 5)})

	asc := v.Sorted(true)
	desc := v.Sorted(false)

	var got []string
	for _, txn := range asc {
		got = append(got, txn.Amount.String())
	}
	assert.Equal(t, []string{"-50", "5", "200", "1000"}, got)
	assert.Equal(t, "1000", desc[0].Amount.String())

	// Chronological order survives.
	assert.Equal(t, "200", v.Transactions[0].Amount.String())
	assert.True(t, v.Balance.Equal(decimal.NewFromInt(1155)))
}
