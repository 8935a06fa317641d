package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "transaction_id,account_id,kind,amount,counterparty,timestamp"

const (
	numFields  = 6
	colTxnID   = 0
	colAcctID  = 1
	colKind    = 2
	colAmount  = 3
	colCparty  = 4
	colTime    = 5
	timeFormat = time.RFC3339Nano
)

// Record is one transaction together with the account it belongs to.
type Record struct {
	AccountID   string
	Transaction model.Transaction
}

// ReadTransactions reads all records from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var recs []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteTransactions writes records to a transactions.csv writer (including header).
func WriteTransactions(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions appends records to an existing transactions.csv writer (no header).
func AppendTransactions(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(rec Record) []string {
	t := rec.Transaction
	row := make([]string, numFields)
	row[colTxnID] = t.ID
	row[colAcctID] = rec.AccountID
	row[colKind] = string(t.Kind)
	row[colAmount] = formatAmount(t.Amount)
	row[colCparty] = t.Counterparty
	row[colTime] = t.Timestamp.UTC().Format(timeFormat)
	return row
}

// formatAmount writes cents with two digits and never rounds finer amounts.
func formatAmount(v decimal.Decimal) string {
	if model.WholeCents(v) {
		return v.StringFixed(2)
	}
	return v.String()
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	amount, err := decimal.NewFromString(row[colAmount])
	if err != nil {
		return Record{}, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	ts, err := time.Parse(timeFormat, row[colTime])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", row[colTime], err)
	}

	if row[colAcctID] == "" {
		return Record{}, fmt.Errorf("missing account_id")
	}

	return Record{
		AccountID: row[colAcctID],
		Transaction: model.Transaction{
			ID:           row[colTxnID],
			Amount:       amount,
			Timestamp:    ts,
			Kind:         model.TransactionKind(row[colKind]),
			Counterparty: row[colCparty],
		},
	}, nil
}

// Group splits records by account, keeping file order within each account.
func Group(recs []Record) map[string][]model.Transaction {
	out := make(map[string][]model.Transaction)
	for _, rec := range recs {
		out[rec.AccountID] = append(out[rec.AccountID], rec.Transaction)
	}
	return out
}

// Flatten is the inverse of Group for a set of accounts, in account order.
func Flatten(accts []model.Account) []Record {
	var recs []Record
	for _, a := range accts {
		for _, t := range a.Transactions {
			recs = append(recs, Record{AccountID: a.ID, Transaction: t})
		}
	}
	return recs
}
