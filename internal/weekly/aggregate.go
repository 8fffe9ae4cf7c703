// Package weekly computes the 7-day aggregation published on Sundays: the
// per-commodity mean over a rolling calendar-day window and its change
// against the previous window.
package weekly

import (
	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

// Summary is the weekly aggregate for a single commodity. Delta is only
// present when both the current and previous week have a mean.
type Summary struct {
	Mean  decimal.NullDecimal
	Delta decimal.NullDecimal
}

// Mean returns the arithmetic mean of the present values, rounded to 1
// decimal. Absent values are skipped, never treated as zero; a window with no
// present values yields an absent mean.
func Mean(values []decimal.NullDecimal) decimal.NullDecimal {
	sum := decimal.Zero
	n := 0
	for _, v := range values {
		if v.Valid {
			sum = sum.Add(v.Decimal)
			n++
		}
	}
	if n == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(n))).Round(1))
}

// Aggregate computes per-commodity summaries from the current week's rows and
// the previous week's rows. Both windows may have gaps or be empty.
func Aggregate(current, previous []domain.PriceRow) map[string]Summary {
	out := make(map[string]Summary, len(domain.CommodityLabels))
	for _, c := range []struct {
		label string
		get   func(domain.PriceRow) decimal.NullDecimal
	}{
		{domain.LabelSoja, func(r domain.PriceRow) decimal.NullDecimal { return r.Soja }},
		{domain.LabelMaiz, func(r domain.PriceRow) decimal.NullDecimal { return r.Maiz }},
		{domain.LabelTrigo, func(r domain.PriceRow) decimal.NullDecimal { return r.Trigo }},
	} {
		cur := Mean(column(current, c.get))
		prev := Mean(column(previous, c.get))

		s := Summary{Mean: cur}
		if cur.Valid && prev.Valid {
			s.Delta = decimal.NewNullDecimal(cur.Decimal.Sub(prev.Decimal))
		}
		out[c.label] = s
	}
	return out
}

func column(rows []domain.PriceRow, get func(domain.PriceRow) decimal.NullDecimal) []decimal.NullDecimal {
	vals := make([]decimal.NullDecimal, 0, len(rows))
	for _, r := range rows {
		vals = append(vals, get(r))
	}
	return vals
}
