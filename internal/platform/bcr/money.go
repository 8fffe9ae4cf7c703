package bcr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonMoneyRe = regexp.MustCompile(`[^\d,\.]`)

// ParseMoneyAR parses an Argentine-format money string ("$440.000,50"):
// dots are thousands separators, the comma is the decimal mark.
func ParseMoneyAR(s string) (decimal.Decimal, error) {
	cleaned := nonMoneyRe.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("bcr: no digits in %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("bcr: parse amount %q: %w", s, err)
	}
	return d, nil
}

// firstAmount returns the first $-prefixed amount in text, or absent when
// there is none or it does not parse.
func firstAmount(text string) decimal.NullDecimal {
	m := moneyRe.FindString(text)
	if m == "" {
		return decimal.NullDecimal{}
	}
	d, err := ParseMoneyAR(m)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
