package history

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankist-dev/bankist/internal/model"
)

func ts(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 9, 30, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleRecords() []Record {
	return []Record{
		{AccountID: "js", Transaction: model.Transaction{ID: "t1", Amount: dec("200"), Timestamp: ts(2025, 1, 3), Kind: model.KindDeposit}},
		{AccountID: "js", Transaction: model.Transaction{ID: "t2", Amount: dec("-100.50"), Timestamp: ts(2025, 1, 4), Kind: model.KindTransferOut, Counterparty: "jd"}},
		{AccountID: "jd", Transaction: model.Transaction{ID: "t3", Amount: dec("100.50"), Timestamp: ts(2025, 1, 4), Kind: model.KindTransferIn, Counterparty: "js"}},
	}
}

func TestRoundTrip(t *testing.T) {
	recs := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, recs))

	// Verify header is present.
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(recs))

	for i := range recs {
		want, have := recs[i], got[i]
		assert.Equal(t, want.AccountID, have.AccountID)
		assert.Equal(t, want.Transaction.ID, have.Transaction.ID)
		assert.True(t, want.Transaction.Amount.Equal(have.Transaction.Amount), "amount mismatch row %d", i)
		assert.True(t, want.Transaction.Timestamp.Equal(have.Transaction.Timestamp))
		assert.Equal(t, want.Transaction.Kind, have.Transaction.Kind)
		assert.Equal(t, want.Transaction.Counterparty, have.Transaction.Counterparty)
	}
}

func TestMarshalRecord_AmountFixed(t *testing.T) {
	row := MarshalRecord(Record{AccountID: "js", Transaction: model.Transaction{Amount: dec("3000"), Timestamp: ts(2025, 1, 1)}})
	assert.Equal(t, "3000.00", row[colAmount])
	assert.Equal(t, "2025-01-01T09:30:00Z", row[colTime])
}

func TestMarshalRecord_AmountNeverRounded(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"12.5", "12.50"},
		{"-0.01", "-0.01"},
		{"1.005", "1.005"},
		{"-0.001", "-0.001"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			rec := Record{AccountID: "js", Transaction: model.Transaction{ID: "t1", Amount: dec(tt.amount), Timestamp: ts(2025, 1, 1), Kind: model.KindDeposit}}
			row := MarshalRecord(rec)
			assert.Equal(t, tt.want, row[colAmount])

			got, err := UnmarshalRecord(row)
			require.NoError(t, err)
			assert.True(t, rec.Transaction.Amount.Equal(got.Transaction.Amount))
		})
	}
}

func TestAppendTransactions_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleRecords()[:1]))
	require.NoError(t, AppendTransactions(&buf, sampleRecords()[1:]))

	assert.Equal(t, 1, strings.Count(buf.String(), "transaction_id"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalRecord_Errors(t *testing.T) {
	good := MarshalRecord(sampleRecords()[0])

	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"field count", func(r []string) []string { return r[:3] }, "expected 6 fields"},
		{"bad amount", func(r []string) []string { r[colAmount] = "lots"; return r }, "parsing amount"},
		{"bad timestamp", func(r []string) []string { r[colTime] = "2025-01-01"; return r }, "parsing timestamp"},
		{"missing account", func(r []string) []string { r[colAcctID] = ""; return r }, "missing account_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.mutate(append([]string(nil), good...))
			_, err := UnmarshalRecord(row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadTransactions_RowNumberInError(t *testing.T) {
	input := Header + "\n" +
		"t1,js,deposit,200.00,,2025-01-03T09:30:00Z\n" +
		"t2,js,deposit,oops,,2025-01-03T09:30:00Z\n"
	_, err := ReadTransactions(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestGroupAndFlatten(t *testing.T) {
	groups := Group(sampleRecords())
	require.Len(t, groups, 2)
	require.Len(t, groups["js"], 2)
	assert.Equal(t, "t1", groups["js"][0].ID)
	assert.Equal(t, "t2", groups["js"][1].ID)
	assert.Equal(t, "t3", groups["jd"][0].ID)

	accts := []model.Account{
		{ID: "js", Transactions: groups["js"]},
		{ID: "jd", Transactions: groups["jd"]},
	}
	flat := Flatten(accts)
	require.Len(t, flat, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{flat[0].Transaction.ID, flat[1].Transaction.ID, flat[2].Transaction.ID})
}
