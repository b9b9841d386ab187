// Package format renders money and dates for display.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

var symbols = map[string]string{
	"VND": "₫",
	"USD": "$",
	"EUR": "€",
	"JPY": "¥",
}

// Currencies without minor units.
var zeroDecimal = map[string]bool{
	"VND": true,
	"JPY": true,
}

type Formatter struct {
	printer  *message.Printer
	currency string
}

func New(locale, currency string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Vietnamese
	}
	return Formatter{
		printer:  message.NewPrinter(tag),
		currency: strings.ToUpper(currency),
	}
}

var defaultFormatter = New("vi", "VND")

// Currency groups amount per locale and appends the currency symbol.
func (f Formatter) Currency(amount float64) string {
	symbol, ok := symbols[f.currency]
	if !ok {
		symbol = f.currency
	}
	if zeroDecimal[f.currency] {
		return f.printer.Sprintf("%d", int64(math.Round(amount))) + " " + symbol
	}
	return f.printer.Sprintf("%.2f", amount) + " " + symbol
}

func (f Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

func Currency(amount float64) string {
	return defaultFormatter.Currency(amount)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// ParseDate reads an HTML date input value or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return Date(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
