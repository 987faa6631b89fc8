// Package money parses and formats currency amounts.
//
// Amounts are shopspring decimals in major units. Formatting defers to
// go-money's currency table so BRL renders as "R$1.234,56" and USD as
// "$1,234.56".
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	BRL = gomoney.BRL
	USD = gomoney.USD
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Hundred is used for percentage math.
var Hundred = decimal.NewFromInt(100)

// Parse reads a user-entered amount. It accepts "," as the decimal
// separator, a leading "R$" or "$", and "1.234,56" style grouping.
// Anything unparseable yields zero.
func Parse(s string) decimal.Decimal {
	d, ok := parse(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseStrict is like Parse but reports whether s was a valid amount.
func ParseStrict(s string) (decimal.Decimal, bool) {
	return parse(s)
}

func parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		// "1.234,56": dots group thousands, the comma is the decimal point.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Format renders d in the given ISO currency.
func Format(d decimal.Decimal, code string) string {
	cur := gomoney.New(0, code).Currency()
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatBRL renders d as Brazilian reais.
func FormatBRL(d decimal.Decimal) string { return Format(d, BRL) }

// FormatUSD renders d as US dollars.
func FormatUSD(d decimal.Decimal) string { return Format(d, USD) }

// Signed is Format with an explicit "+" for positive values.
func Signed(d decimal.Decimal, code string) string {
	if d.IsPositive() {
		return "+" + Format(d, code)
	}
	return Format(d, code)
}

// Plain renders d with two decimals and a dot separator, for copying
// into other tools.
func Plain(d decimal.Decimal) string { return d.StringFixed(2) }

// Percent renders a 0-100 value as "12.34%".
func Percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
