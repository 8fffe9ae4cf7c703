// Package report builds the Spanish publish texts: the daily pizarra lines,
// the close variant with intraday deltas, the weekly summary, and the two
// degraded texts (no board data, apology).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/PatriPorrato/AgroBot/internal/domain"
	"github.com/PatriPorrato/AgroBot/internal/weekly"
)

const (
	hashtagsMidday = "#Agro #Soja #Maíz #Trigo #Fertilizantes"
	hashtagsClose  = "#Agro #CierreDeMercado #Soja #Maíz #Trigo"
	hashtagsWeekly = "#Agro #Semana #Soja #Maíz #Trigo"
)

// DailyData carries everything a daily (midday or close) text needs.
type DailyData struct {
	Date   time.Time
	Board  domain.BoardQuote
	USD    map[string]decimal.Decimal // label -> USD/t, present conversions only
	Rate   decimal.Decimal            // ARS per USD
	Urea   decimal.Decimal            // USD/t
	Ratios map[string]decimal.Decimal // label -> tonnes of urea per tonne
	Deltas map[string]decimal.Decimal // label -> intraday delta in USD, close runs only
}

// Formatter renders publish texts. ARS amounts use Spanish thousands grouping
// ("440.000"); USD amounts keep plain decimal-point formatting.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{printer: message.NewPrinter(language.Spanish)}
}

// Midday renders the midday publish text.
func (f *Formatter) Midday(d DailyData) string {
	lines := f.dailyLines(d)
	lines = append(lines, hashtagsMidday)
	return strings.Join(lines, "\n")
}

// Close renders the close publish text, with the intraday delta line when
// deltas are available.
func (f *Formatter) Close(d DailyData) string {
	lines := f.dailyLines(d)
	if delta := f.deltaLine(d.Deltas); delta != "" {
		lines = append(lines, delta)
	}
	lines = append(lines, hashtagsClose)
	return strings.Join(lines, "\n")
}

func (f *Formatter) dailyLines(d DailyData) []string {
	lines := []string{fmt.Sprintf("🧾 Pizarra BCR %s", d.Date.UTC().Format("02-01-2006"))}

	for _, c := range []struct {
		label string
		ars   decimal.NullDecimal
	}{
		{domain.LabelSoja, d.Board.Soja},
		{domain.LabelMaiz, d.Board.Maiz},
		{domain.LabelTrigo, d.Board.Trigo},
	} {
		if !c.ars.Valid {
			continue
		}
		line := fmt.Sprintf("%s: $%s/t", c.label, f.ars(c.ars.Decimal))
		if usd, ok := d.USD[c.label]; ok {
			line += fmt.Sprintf("  (~USD %s)", usd.StringFixed(2))
		}
		lines = append(lines, line)
	}

	lines = append(lines, fmt.Sprintf("💵 TC oficial ~ $%s", d.Rate.StringFixed(2)))

	if parity := f.parityLine(d.Ratios); parity != "" {
		lines = append(lines, parity)
	}
	return lines
}

// parityLine renders "1 t soja ≈ X t urea | ..." for the ratios present.
func (f *Formatter) parityLine(ratios map[string]decimal.Decimal) string {
	var parts []string
	for _, label := range domain.CommodityLabels {
		ratio, ok := ratios[label]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("1 t %s ≈ %s t urea", strings.ToLower(label), ratio.StringFixed(2)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "🧮 " + strings.Join(parts, " | ")
}

// deltaLine renders the intraday variation, positive deltas with an explicit
// leading "+".
func (f *Formatter) deltaLine(deltas map[string]decimal.Decimal) string {
	order := append(append([]string{}, domain.CommodityLabels...), domain.LabelUrea)

	var parts []string
	for _, label := range order {
		delta, ok := deltas[label]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s USD", label, signed(delta.Round(1))))
	}
	if len(parts) == 0 {
		return ""
	}
	return "📊 Variación intradía: " + strings.Join(parts, ", ")
}

// Weekly renders the Sunday summary: date range header, one line per
// commodity with a mean, week-over-week delta when the previous window also
// had one.
func (f *Formatter) Weekly(end time.Time, summaries map[string]weekly.Summary) string {
	start := end.UTC().AddDate(0, 0, -6)
	lines := []string{fmt.Sprintf("📅 Semana %s–%s", start.Format("02-01"), end.UTC().Format("02-01-2006"))}

	for _, label := range domain.CommodityLabels {
		s, ok := summaries[label]
		if !ok || !s.Mean.Valid {
			continue
		}
		line := fmt.Sprintf("%s: prom. USD %s/t", label, s.Mean.Decimal.StringFixed(1))
		if s.Delta.Valid {
			line += fmt.Sprintf(" (vs semana pasada %s)", signed(s.Delta.Decimal.Round(1)))
		}
		lines = append(lines, line)
	}

	lines = append(lines, hashtagsWeekly)
	return strings.Join(lines, "\n")
}

// MinimalStatus renders the degraded daily text for days without board data.
func (f *Formatter) MinimalStatus(date time.Time, rate, urea decimal.Decimal) string {
	return strings.Join([]string{
		fmt.Sprintf("🧾 Pizarra BCR %s", date.UTC().Format("02-01-2006")),
		"Sin datos de pizarra hoy.",
		fmt.Sprintf("💵 TC oficial ~ $%s", rate.StringFixed(2)),
		fmt.Sprintf("🧮 Urea ref.: USD %s/t", urea.StringFixed(2)),
		"#Agro",
	}, "\n")
}

// Apology renders the fallback text published when a run fails outright.
func (f *Formatter) Apology() string {
	return "⚠️ No pudimos armar el reporte de hoy por un problema con las fuentes. Volvemos en la próxima corrida."
}

// ars formats an ARS amount with Spanish thousands grouping, no decimals.
func (f *Formatter) ars(d decimal.Decimal) string {
	return f.printer.Sprintf("%d", d.Round(0).IntPart())
}

// signed formats d to one decimal with an explicit "+" for non-negatives.
func signed(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(1)
	}
	return d.StringFixed(1)
}
