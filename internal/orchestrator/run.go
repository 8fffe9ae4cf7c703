// Package orchestrator drives one scheduled run end to end: fetch, convert,
// persist, format, publish. It owns the mode semantics and the degradation
// policy; process-level concerns (exit codes, apology fallback) stay in the
// caller.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
	"github.com/PatriPorrato/AgroBot/internal/pricing"
	"github.com/PatriPorrato/AgroBot/internal/report"
	"github.com/PatriPorrato/AgroBot/internal/weekly"
)

// Result describes what a run did. It is returned alongside the error so the
// caller can distinguish "failed" from "correctly did nothing".
type Result struct {
	Mode           Mode
	Published      bool
	Text           string
	SkippedWeekend bool
	NoData         bool
}

// Runner wires the collaborators for a single run.
type Runner struct {
	Brand     string
	Board     domain.BoardScraper
	Rate      domain.RateFetcher
	Urea      domain.ReferencePriceFetcher
	Ledger    domain.DailyLedger
	Snapshots domain.SnapshotCache
	Charts    domain.ChartRenderer
	Publisher domain.Publisher
	Formatter *report.Formatter
	Now       func() time.Time
	Logger    *slog.Logger
}

// Run executes one run in the given mode. The returned error is fatal to the
// run; recoverable source problems degrade the output instead.
func (r *Runner) Run(ctx context.Context, mode Mode) (Result, error) {
	res := Result{Mode: mode}
	now := r.Now()

	// Daily runs are pointless on weekends: the board is not published.
	if mode != ModeWeekly {
		if wd := now.UTC().Weekday(); wd == time.Saturday || wd == time.Sunday {
			r.Logger.Info("weekend, skipping daily run", slog.String("mode", string(mode)))
			res.SkippedWeekend = true
			return res, nil
		}
	}

	if mode == ModeWeekly {
		return r.runWeekly(ctx, res, now)
	}
	return r.runDaily(ctx, res, mode, now)
}

func (r *Runner) runDaily(ctx context.Context, res Result, mode Mode, now time.Time) (Result, error) {
	// The rate is required for every conversion; without it there is nothing
	// worth publishing.
	rate, err := r.Rate.Fetch(ctx)
	if err != nil {
		return res, err
	}

	quote, err := r.Board.Fetch(ctx)
	if err != nil {
		r.Logger.Warn("board fetch failed, continuing without board data", slog.String("error", err.Error()))
		quote = domain.BoardQuote{Date: now}
	}
	urea := r.Urea.Fetch(ctx)
	date := quote.Date

	usd := make(map[string]decimal.Decimal)
	ratios := make(map[string]decimal.Decimal)
	for _, c := range []struct {
		label string
		ars   decimal.NullDecimal
	}{
		{domain.LabelSoja, quote.Soja},
		{domain.LabelMaiz, quote.Maiz},
		{domain.LabelTrigo, quote.Trigo},
	} {
		converted := pricing.Convert(c.ars, rate)
		if !converted.Valid {
			continue
		}
		usd[c.label] = converted.Decimal
		if ratio := pricing.Ratio(converted, urea); ratio.Valid {
			ratios[c.label] = ratio.Decimal
		}
	}

	row := domain.PriceRow{
		Date:  date,
		Soja:  pricing.Convert(quote.Soja, rate),
		Maiz:  pricing.Convert(quote.Maiz, rate),
		Trigo: pricing.Convert(quote.Trigo, rate),
	}
	if err := r.Ledger.Upsert(ctx, row); err != nil {
		return res, fmt.Errorf("orchestrator: upsert ledger: %w", err)
	}

	if quote.Empty() {
		r.Logger.Info("no board data today, publishing minimal status")
		res.NoData = true
		res.Text = r.Formatter.MinimalStatus(date, rate, urea)
		if err := r.Publisher.Publish(ctx, res.Text, nil); err != nil {
			return res, err
		}
		res.Published = true
		return res, nil
	}

	// Chart prices carry the urea reference alongside the board commodities.
	chartPrices := make(map[string]decimal.Decimal, len(usd)+1)
	for label, v := range usd {
		chartPrices[label] = v
	}
	chartPrices[domain.LabelUrea] = urea.Round(2)

	data := report.DailyData{
		Date:   date,
		Board:  quote,
		USD:    usd,
		Rate:   rate,
		Urea:   urea,
		Ratios: ratios,
	}

	switch mode {
	case ModeMidday:
		if err := r.Snapshots.Save(ctx, domain.MiddaySnapshot{Date: date, Prices: chartPrices}); err != nil {
			return res, fmt.Errorf("orchestrator: save midday snapshot: %w", err)
		}
		res.Text = r.Formatter.Midday(data)
	case ModeClose:
		data.Deltas = r.intradayDeltas(ctx, date, chartPrices)
		res.Text = r.Formatter.Close(data)
	}

	image := r.renderBar(chartPrices, date)
	if err := r.Publisher.Publish(ctx, res.Text, image); err != nil {
		return res, err
	}
	res.Published = true
	return res, nil
}

// intradayDeltas compares close prices against the same-day midday snapshot.
// A missing or stale snapshot yields nil, which simply drops the delta line.
func (r *Runner) intradayDeltas(ctx context.Context, date time.Time, current map[string]decimal.Decimal) map[string]decimal.Decimal {
	snap, err := r.Snapshots.Load(ctx, date)
	if err != nil {
		r.Logger.Info("no midday snapshot for today, skipping intraday deltas", slog.String("error", err.Error()))
		return nil
	}

	deltas := make(map[string]decimal.Decimal)
	for label, cur := range current {
		prev, ok := snap.Prices[label]
		if !ok {
			continue
		}
		deltas[label] = cur.Sub(prev)
	}
	return deltas
}

func (r *Runner) runWeekly(ctx context.Context, res Result, now time.Time) (Result, error) {
	current, err := r.Ledger.ReadWindow(ctx, now, 7)
	if err != nil {
		return res, fmt.Errorf("orchestrator: read current week: %w", err)
	}
	previous, err := r.Ledger.ReadWindow(ctx, now.AddDate(0, 0, -7), 7)
	if err != nil {
		return res, fmt.Errorf("orchestrator: read previous week: %w", err)
	}

	summaries := weekly.Aggregate(current, previous)
	res.Text = r.Formatter.Weekly(now, summaries)

	var image []byte
	if len(current) > 0 {
		caption := fmt.Sprintf("Resumen semanal %s", now.UTC().Format("02-01-2006"))
		img, err := r.Charts.RenderTrend(current, r.Brand, caption)
		if err != nil {
			r.Logger.Warn("trend chart failed, publishing text only", slog.String("error", err.Error()))
		} else {
			image = img
		}
	} else {
		res.NoData = true
	}

	if err := r.Publisher.Publish(ctx, res.Text, image); err != nil {
		return res, err
	}
	res.Published = true
	return res, nil
}

func (r *Runner) renderBar(prices map[string]decimal.Decimal, date time.Time) []byte {
	img, err := r.Charts.RenderBar(prices, date, r.Brand)
	if err != nil {
		r.Logger.Warn("bar chart failed, publishing text only", slog.String("error", err.Error()))
		return nil
	}
	return img
}
