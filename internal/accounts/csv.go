package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/id"
	"github.com/bankist-dev/bankist/internal/model"
)

// Header is the CSV header for accounts.csv.
const Header = "login_id,owner,currency,locale,interest_rate,pin"

const (
	numFields   = 6
	colLogin    = 0
	colOwner    = 1
	colCurrency = 2
	colLocale   = 3
	colRate     = 4
	colPIN      = 5
)

// ReadAccounts reads accounts.csv. Transactions are not part of this file.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colLogin] = acct.ID
	row[colOwner] = acct.Owner
	row[colCurrency] = acct.Currency
	row[colLocale] = acct.Locale
	row[colRate] = acct.InterestRate.String()
	row[colPIN] = acct.PIN
	return row
}

// UnmarshalAccount converts a CSV row to an Account. A blank login_id is
// derived from the owner's initials and a blank locale from the currency.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var rate decimal.Decimal
	if record[colRate] != "" {
		var err error
		rate, err = decimal.NewFromString(record[colRate])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing interest_rate %q: %w", record[colRate], err)
		}
	}

	acct := model.Account{
		ID:           record[colLogin],
		Owner:        record[colOwner],
		Currency:     record[colCurrency],
		Locale:       record[colLocale],
		InterestRate: rate,
		PIN:          record[colPIN],
	}
	if acct.ID == "" {
		acct.ID = id.LoginID(acct.Owner)
	}
	if acct.Locale == "" {
		acct.Locale = format.DefaultLocale(acct.Currency)
	}
	return acct, nil
}
