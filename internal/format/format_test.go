package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		locale   string
		want     string
	}{
		{"1300", "USD", "en-US", "$1,300.00"},
		{"-30.5", "USD", "en-US", "-$30.50"},
		{"3840", "EUR", "de-DE", "3.840,00 €"},
		{"-400", "EUR", "de-DE", "-400,00 €"},
		{"0", "USD", "en-US", "$0.00"},
		{"12.345", "USD", "en-US", "$12.35"},
		{"5", "CHF", "en-US", "5.00 CHF"},
	}
	for _, tt := range tests {
		got := Money(decimal.RequireFromString(tt.amount), tt.currency, tt.locale)
		assert.Equal(t, tt.want, got, "Money(%s, %s, %s)", tt.amount, tt.currency, tt.locale)
	}
}

func TestMoney_DefaultLocale(t *testing.T) {
	assert.Equal(t, "$25.00", Money(decimal.NewFromInt(25), "USD", ""))
}

func TestDefaultLocale(t *testing.T) {
	assert.Equal(t, "de-DE", DefaultLocale("EUR"))
	assert.Equal(t, "en-US", DefaultLocale("usd"))
	assert.Equal(t, "en-US", DefaultLocale("XYZ"))
}

func TestNumber_LargeValuesExact(t *testing.T) {
	tests := []struct {
		amount string
		locale string
		want   string
	}{
		{"12345678901234567.89", "en-US", "12,345,678,901,234,567.89"},
		{"12345678901234567.89", "de-DE", "12.345.678.901.234.567,89"},
		{"-9007199254740993.01", "en-US", "-9,007,199,254,740,993.01"},
		{"999.995", "en-US", "1,000.00"},
		{"100", "en-US", "100.00"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"/"+tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(decimal.RequireFromString(tt.amount), tt.locale))
		})
	}
}

func TestNumber_UnknownLocale(t *testing.T) {
	assert.Equal(t, "1,000.00", Number(decimal.NewFromInt(1000), "not a locale!"))
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{600, "10:00"},
		{599, "09:59"},
		{61, "01:01"},
		{9, "00:09"},
		{0, "00:00"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Countdown(tt.seconds), "Countdown(%d)", tt.seconds)
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "07/03/2025", Date(ts))
	assert.Equal(t, "07/03/2025, 14:05", DateTime(ts))
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-2 * time.Hour), "Today"},
		{time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), "5 days ago"},
		{time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC), "01/02/2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysAgo(tt.at, now), "DaysAgo(%s)", tt.at)
	}
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Good Morning", Greeting(8))
	assert.Equal(t, "Good Afternoon", Greeting(12))
	assert.Equal(t, "Good Evening", Greeting(20))
	assert.Equal(t, "Good Night", Greeting(23))
	assert.Equal(t, "Good Night", Greeting(3))
}
