// Package pricing holds the pure money math: local-currency conversion and
// the input-cost parity ratio. Absence propagates; nothing here panics.
package pricing

import "github.com/shopspring/decimal"

// Convert returns amount/rate rounded to 2 decimals, expressing an ARS amount
// in USD. The result is absent when the amount is absent or the rate is not
// positive.
func Convert(amount decimal.NullDecimal, rate decimal.Decimal) decimal.NullDecimal {
	if !amount.Valid || rate.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Decimal.Div(rate).Round(2))
}

// Ratio returns numerator/denominator rounded to 2 decimals, expressing how
// many tonnes of the reference input one tonne of commodity buys. The result
// is absent when the numerator is absent or the denominator is not positive.
func Ratio(numerator decimal.NullDecimal, denominator decimal.Decimal) decimal.NullDecimal {
	if !numerator.Valid || denominator.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(numerator.Decimal.Div(denominator).Round(2))
}
