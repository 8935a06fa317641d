// Package format renders amounts, dates, and timers for the terminal
// dashboard. Nothing here feeds back into ledger arithmetic.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"JPY": "¥",
}

// symbol-first locales; everything else puts the symbol after the number.
var prefixed = map[string]bool{
	"en": true,
	"ja": true,
}

var defaultLocales = map[string]string{
	"EUR": "de-DE",
	"USD": "en-US",
	"GBP": "en-GB",
	"JPY": "ja-JP",
}

// DefaultLocale returns the locale used for a currency when an account does
// not name one.
func DefaultLocale(currency string) string {
	if loc, ok := defaultLocales[strings.ToUpper(currency)]; ok {
		return loc
	}
	return "en-US"
}

// Number formats v with two decimals and the locale's separators.
// Digits come from the decimal itself, so large balances stay exact.
// Unknown locales fall back to English.
func Number(v decimal.Decimal, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	group, point := separators(tag)

	digits := v.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// separators reads the grouping and decimal marks a locale prints for
// 1000.5. Locales with non-Latin digits fall back to English marks.
func separators(tag language.Tag) (group, point string) {
	s := message.NewPrinter(tag).Sprintf("%.1f", 1000.5)
	if !strings.HasPrefix(s, "1") || !strings.HasSuffix(s, "5") {
		return ",", "."
	}
	mid := s[1 : len(s)-1]
	i := strings.Index(mid, "000")
	if i < 0 || i+3 >= len(mid) {
		return ",", "."
	}
	return mid[:i], mid[i+3:]
}

// Money formats v as an amount in currency, e.g. "$1,300.00" or "1.300,00 €".
func Money(v decimal.Decimal, currency, locale string) string {
	if locale == "" {
		locale = DefaultLocale(currency)
	}
	num := Number(v, locale)
	sym, ok := symbols[strings.ToUpper(currency)]
	if !ok {
		return num + " " + strings.ToUpper(currency)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	if prefixed[base.String()] {
		if strings.HasPrefix(num, "-") {
			return "-" + sym + num[1:]
		}
		return sym + num
	}
	return num + " " + sym
}

// Countdown formats remaining seconds as MM:SS.
func Countdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Date formats t as DD/MM/YYYY.
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// DateTime formats t as DD/MM/YYYY, HH:MM.
func DateTime(t time.Time) string {
	return t.Format("02/01/2006, 15:04")
}

// DaysAgo describes t relative to now for the transaction list.
func DaysAgo(t, now time.Time) string {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	days := int(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC).Sub(time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return Date(t)
	}
}

// Greeting returns the salutation for an hour of the day (0-23).
func Greeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good Morning"
	case hour >= 12 && hour < 18:
		return "Good Afternoon"
	case hour >= 18 && hour < 23:
		return "Good Evening"
	default:
		return "Good Night"
	}
}
