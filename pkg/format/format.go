// Package format renders values for people: reports, emails and list previews.
// Nothing here feeds back into arithmetic.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.AmericanEnglish)
	symbol  = printer.Sprint(currency.Symbol(currency.USD))
)

// Currency renders whole dollars with thousands separators, e.g. "$12,500" or "-$300".
// Halves round away from zero.
func Currency(d decimal.Decimal) string {
	whole := d.Round(0)
	if whole.IsZero() {
		return symbol + "0"
	}
	if whole.IsNegative() {
		return "-" + symbol + printer.Sprintf("%d", whole.Neg().IntPart())
	}
	return symbol + printer.Sprintf("%d", whole.IntPart())
}

// Percent renders a 0-100 value with one decimal, e.g. "37.5%".
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// Summary cuts s at a word boundary for listings.
func Summary(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	i := max
	for i > 0 && r[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
	}
	return strings.TrimSpace(string(r[:i])) + "…"
}
