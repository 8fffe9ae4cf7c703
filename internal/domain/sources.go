package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BoardScraper fetches the daily price board. An all-absent quote signals "no
// data published today" and is not an error; unreachable or unparseable pages
// wrap ErrSourceUnavailable.
type BoardScraper interface {
	Fetch(ctx context.Context) (BoardQuote, error)
}

// RateFetcher fetches the official exchange rate (ARS per USD). Failures wrap
// ErrSourceUnavailable; the rate is required for every conversion, so a
// failure here is fatal to the run.
type RateFetcher interface {
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

// ReferencePriceFetcher resolves the urea reference price in USD per tonne.
// It falls back through configured sources to a built-in constant and never
// fails outward.
type ReferencePriceFetcher interface {
	Fetch(ctx context.Context) decimal.Decimal
}

// ChartRenderer produces PNG chart bytes. Implementations are pure: no side
// effects beyond the returned bytes.
type ChartRenderer interface {
	// RenderBar draws the day's labeled USD prices as a bar chart.
	RenderBar(prices map[string]decimal.Decimal, date time.Time, brand string) ([]byte, error)

	// RenderTrend draws up to three commodity series over the given rows.
	// Gaps in a series break the line rather than interpolating.
	RenderTrend(rows []PriceRow, brand, caption string) ([]byte, error)
}

// Publisher posts a message, optionally with an image, to the social
// platform. Failures wrap ErrPublishFailed.
type Publisher interface {
	Publish(ctx context.Context, text string, image []byte) error
}
