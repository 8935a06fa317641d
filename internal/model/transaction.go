package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind records why a transaction was appended.
type TransactionKind string

const (
	KindOpening     TransactionKind = "opening"
	KindDeposit     TransactionKind = "deposit"
	KindWithdrawal  TransactionKind = "withdrawal"
	KindTransferIn  TransactionKind = "transfer-in"
	KindTransferOut TransactionKind = "transfer-out"
	KindLoan        TransactionKind = "loan"
)

// Transaction is a single movement on an account.
type Transaction struct {
	ID           string
	Amount       decimal.Decimal // negative = outflow, positive = inflow
	Timestamp    time.Time
	Kind         TransactionKind
	Counterparty string // other account ID for transfers
}

// WholeCents reports whether v has at most two decimal places.
func WholeCents(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(2))
}

// IsDeposit reports whether t moves money into the account.
func (t Transaction) IsDeposit() bool {
	return !t.Amount.IsNegative()
}
