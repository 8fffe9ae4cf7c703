// Package insumos resolves the urea reference price in USD per tonne. The
// chain is: published CSV (when configured) -> configured fallback value ->
// built-in constant. Every link is best effort; the fetcher never fails
// outward because the parity line is informational, not critical.
package insumos

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUreaUSD is the last-resort urea price, in USD per tonne.
var DefaultUreaUSD = decimal.NewFromInt(760)

// Fetcher resolves the urea reference price.
type Fetcher struct {
	csvURL     string
	fallback   decimal.Decimal
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. csvURL may be empty (skips the CSV source);
// fallback <= 0 disables the configured fallback.
func NewFetcher(csvURL string, fallback decimal.Decimal, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		csvURL:     csvURL,
		fallback:   fallback,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "insumos")),
	}
}

// Fetch implements domain.ReferencePriceFetcher.
func (f *Fetcher) Fetch(ctx context.Context) decimal.Decimal {
	if f.csvURL != "" {
		if price, ok := f.fetchCSV(ctx); ok {
			return price
		}
	}
	if f.fallback.Sign() > 0 {
		return f.fallback
	}
	return DefaultUreaUSD
}

// fetchCSV pulls the insumos CSV and returns the newest urea row. Expected
// layout: date,insumo,usd_per_t with the newest rows last.
func (f *Fetcher) fetchCSV(ctx context.Context) (decimal.Decimal, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.csvURL, nil)
	if err != nil {
		f.logger.Warn("insumos csv request failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("insumos csv fetch failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("insumos csv fetch failed", slog.Int("status", resp.StatusCode))
		return decimal.Decimal{}, false
	}

	reader := csv.NewReader(io.LimitReader(resp.Body, 1<<20))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		f.logger.Warn("insumos csv parse failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, false
	}

	for i := len(records) - 1; i >= 1; i-- {
		rec := records[i]
		if len(rec) < 3 || !strings.EqualFold(strings.TrimSpace(rec[1]), "urea") {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil || price.Sign() <= 0 {
			continue
		}
		return price, true
	}

	f.logger.Warn("insumos csv has no usable urea row")
	return decimal.Decimal{}, false
}
