// Package chart renders the published PNG images: a bar chart of the day's
// USD prices and a multi-series trend line for the weekly summary.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

const (
	chartWidth  = 900
	chartHeight = 500
)

var seriesColors = map[string]drawing.Color{
	domain.LabelSoja:  gochart.ColorGreen,
	domain.LabelMaiz:  gochart.ColorOrange,
	domain.LabelTrigo: gochart.ColorBlue,
}

// Renderer implements domain.ChartRenderer on top of go-chart.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderBar draws one bar per labeled price, in the fixed Soja, Maíz, Trigo,
// Urea order. Labels missing from the map are skipped.
func (r *Renderer) RenderBar(prices map[string]decimal.Decimal, date time.Time, brand string) ([]byte, error) {
	order := append(append([]string{}, domain.CommodityLabels...), domain.LabelUrea)

	var bars []gochart.Value
	for _, label := range order {
		price, ok := prices[label]
		if !ok {
			continue
		}
		v, _ := price.Float64()
		bars = append(bars, gochart.Value{
			Label: fmt.Sprintf("%s %s", label, price.StringFixed(2)),
			Value: v,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("chart: no prices to draw")
	}

	bar := gochart.BarChart{
		Title:    fmt.Sprintf("%s · %s · USD/t", brand, date.UTC().Format("02-01-2006")),
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 90,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bar.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render bar: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTrend draws the three commodity series over the given rows. Absent
// values break the line into separate segments instead of interpolating
// across the gap; isolated points are drawn as dots.
func (r *Renderer) RenderTrend(rows []domain.PriceRow, brand, caption string) ([]byte, error) {
	var series []gochart.Series
	for _, label := range domain.CommodityLabels {
		series = append(series, segmentsFor(rows, label)...)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("chart: no data points to draw")
	}

	graph := gochart.Chart{
		Title:  fmt.Sprintf("%s · %s", brand, caption),
		Width:  chartWidth,
		Height: chartHeight,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: "USD / t",
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render trend: %w", err)
	}
	return buf.Bytes(), nil
}

// segmentsFor splits one commodity's values into contiguous runs of present
// data. Only the first run carries the legend name so the commodity appears
// once in the legend regardless of how many gaps it has.
func segmentsFor(rows []domain.PriceRow, label string) []gochart.Series {
	color := seriesColors[label]

	var segments []gochart.Series
	var xs []time.Time
	var ys []float64

	flush := func() {
		if len(xs) == 0 {
			return
		}
		name := ""
		if len(segments) == 0 {
			name = label
		}
		segments = append(segments, gochart.TimeSeries{
			Name: name,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
			XValues: xs,
			YValues: ys,
		})
		xs = nil
		ys = nil
	}

	for _, row := range rows {
		value := cellFor(row, label)
		if !value.Valid {
			flush()
			continue
		}
		v, _ := value.Decimal.Float64()
		xs = append(xs, row.Date.UTC())
		ys = append(ys, v)
	}
	flush()
	return segments
}

func cellFor(row domain.PriceRow, label string) decimal.NullDecimal {
	switch label {
	case domain.LabelSoja:
		return row.Soja
	case domain.LabelMaiz:
		return row.Maiz
	case domain.LabelTrigo:
		return row.Trigo
	}
	return decimal.NullDecimal{}
}
