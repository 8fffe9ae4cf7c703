// Package domain defines the core types shared across the agro bot: board
// quotes, the daily price ledger row, the midday snapshot, and the interfaces
// implemented by the storage and platform packages.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commodity labels as they appear on the pizarra and in published text.
const (
	LabelSoja  = "Soja"
	LabelMaiz  = "Maíz"
	LabelTrigo = "Trigo"
	LabelUrea  = "Urea"
)

// CommodityLabels is the fixed display order for the three board commodities.
var CommodityLabels = []string{LabelSoja, LabelMaiz, LabelTrigo}

// Day returns the calendar-date key for t in UTC ("2006-01-02"). All date
// comparisons in the bot are done on this key.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a) == Day(b)
}

// BoardQuote is one scrape of the price board, in ARS per tonne. Any of the
// three values may be absent; an entirely empty quote means the board was not
// published (e.g. a weekend) and is a valid result, not an error.
type BoardQuote struct {
	Date  time.Time
	Soja  decimal.NullDecimal
	Maiz  decimal.NullDecimal
	Trigo decimal.NullDecimal
}

// Empty reports whether the quote carries no commodity values at all.
func (q BoardQuote) Empty() bool {
	return !q.Soja.Valid && !q.Maiz.Valid && !q.Trigo.Valid
}

// PriceRow is one daily ledger row: USD-per-tonne prices for a calendar date.
// Absent values are stored as absent, never as zero. There is at most one row
// per date.
type PriceRow struct {
	Date  time.Time
	Soja  decimal.NullDecimal
	Maiz  decimal.NullDecimal
	Trigo decimal.NullDecimal
}

// MiddaySnapshot is the single cached midday result, used by the same-day
// close run to compute intraday deltas. It is only meaningful for the date it
// was captured on.
type MiddaySnapshot struct {
	Date   time.Time
	Prices map[string]decimal.Decimal // label -> USD per tonne
}
