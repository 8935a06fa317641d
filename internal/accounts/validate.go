package accounts

import (
	"fmt"
	"strings"

	"github.com/bankist-dev/bankist/internal/history"
	"github.com/bankist-dev/bankist/internal/model"
)

// ValidationError describes a single problem in the fixture data.
type ValidationError struct {
	AccountID   string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("account [%s]: %s", e.AccountID, e.Description)
}

var knownKinds = map[model.TransactionKind]bool{
	model.KindOpening:     true,
	model.KindDeposit:     true,
	model.KindWithdrawal:  true,
	model.KindTransferIn:  true,
	model.KindTransferOut: true,
	model.KindLoan:        true,
}

// Validate checks every account and its history. It returns all problems
// found rather than stopping at the first.
func Validate(accts []model.Account) []ValidationError {
	var errs []ValidationError
	add := func(acctID, format string, args ...any) {
		errs = append(errs, ValidationError{AccountID: acctID, Description: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(accts))
	for _, a := range accts {
		if a.ID == "" {
			add(a.ID, "login id is empty")
		} else if seen[a.ID] {
			add(a.ID, "duplicate login id")
		}
		seen[a.ID] = true

		if strings.TrimSpace(a.Owner) == "" {
			add(a.ID, "owner is empty")
		}
		if !isCurrencyCode(a.Currency) {
			add(a.ID, "currency %q is not a 3-letter code", a.Currency)
		}
		if a.InterestRate.IsNegative() {
			add(a.ID, "interest rate %s is negative", a.InterestRate)
		}
		if !isNumeric(a.PIN) {
			add(a.ID, "pin must be a non-empty string of digits")
		}

		for _, t := range a.Transactions {
			if t.Amount.IsZero() {
				add(a.ID, "transaction %s has a zero amount", t.ID)
			}
			if !model.WholeCents(t.Amount) {
				add(a.ID, "transaction %s amount %s has more than 2 decimal places", t.ID, t.Amount)
			}
			if !knownKinds[t.Kind] {
				add(a.ID, "transaction %s has unknown kind %q", t.ID, t.Kind)
			}
		}
	}
	return errs
}

// ValidateHistory reports history records that point at accounts not in accts.
func ValidateHistory(recs []history.Record, accts []model.Account) []ValidationError {
	known := make(map[string]bool, len(accts))
	for _, a := range accts {
		known[a.ID] = true
	}
	var errs []ValidationError
	for _, rec := range recs {
		if !known[rec.AccountID] {
			errs = append(errs, ValidationError{
				AccountID:   rec.AccountID,
				Description: fmt.Sprintf("transaction %s references an unknown account", rec.Transaction.ID),
			})
		}
	}
	return errs
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
