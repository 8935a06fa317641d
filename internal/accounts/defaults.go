package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/id"
	"github.com/bankist-dev/bankist/internal/model"
)

// fixtureEpoch is the timestamp of the first fixture movement. Later
// movements are one day apart.
var fixtureEpoch = time.Date(2019, time.November, 18, 21, 31, 17, 0, time.UTC)

// fixtureNamespace keeps fixture transaction IDs stable across runs.
var fixtureNamespace = uuid.MustParse("5b0e3a52-7f0c-4c1e-9a43-0d6a3c9b1f20")

type fixture struct {
	login     string
	owner     string
	currency  string
	locale    string
	rate      string
	pin       string
	movements []int64
}

var fixtures = []fixture{
	{"js", "Jonas Schmedtmann", "EUR", "de-DE", "1.2", "1111", []int64{200, 450, -400, 3000, -650, -130, 70, 1300}},
	{"jd", "Jessica Davis", "USD", "en-US", "1.5", "2222", []int64{5000, 3400, -150, -790, -3210, -1000, 8500, -30}},
	{"", "Steven Thomas Williams", "EUR", "", "0.7", "3333", []int64{200, -200, 340, -300, -20, 50, 400, -460}},
	{"", "Sarah Smith", "EUR", "", "1", "4444", []int64{430, 1000, 700, 50, 90}},
}

// DefaultFixture returns the four demo accounts with their movement
// histories. Each call returns fresh copies.
func DefaultFixture() []model.Account {
	out := make([]model.Account, 0, len(fixtures))
	for _, f := range fixtures {
		login := f.login
		if login == "" {
			login = id.LoginID(f.owner)
		}
		acct, _ := UnmarshalAccount([]string{login, f.owner, f.currency, f.locale, f.rate, f.pin})
		for i, m := range f.movements {
			amount := decimal.NewFromInt(m)
			kind := model.KindDeposit
			if amount.IsNegative() {
				kind = model.KindWithdrawal
			}
			acct.Transactions = append(acct.Transactions, model.Transaction{
				ID:        uuid.NewSHA1(fixtureNamespace, fmt.Appendf(nil, "%s/%d", login, i)).String(),
				Amount:    amount,
				Timestamp: fixtureEpoch.AddDate(0, 0, i),
				Kind:      kind,
			})
		}
		out = append(out, acct)
	}
	return out
}
