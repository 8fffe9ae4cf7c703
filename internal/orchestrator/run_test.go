package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
	"github.com/PatriPorrato/AgroBot/internal/report"
)

type fakeBoard struct {
	quote domain.BoardQuote
	err   error
}

func (f *fakeBoard) Fetch(ctx context.Context) (domain.BoardQuote, error) {
	return f.quote, f.err
}

type fakeRate struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRate) Fetch(ctx context.Context) (decimal.Decimal, error) {
	return f.rate, f.err
}

type fakeUrea struct {
	price decimal.Decimal
}

func (f *fakeUrea) Fetch(ctx context.Context) decimal.Decimal {
	return f.price
}

type fakeLedger struct {
	rows    []domain.PriceRow
	upserts int
}

func (f *fakeLedger) Upsert(ctx context.Context, row domain.PriceRow) error {
	f.upserts++
	for i, r := range f.rows {
		if domain.SameDay(r.Date, row.Date) {
			f.rows[i] = row
			return nil
		}
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeLedger) ReadWindow(ctx context.Context, end time.Time, days int) ([]domain.PriceRow, error) {
	start := end.UTC().AddDate(0, 0, -(days - 1))
	var out []domain.PriceRow
	for _, r := range f.rows {
		day := domain.Day(r.Date)
		if day >= domain.Day(start) && day <= domain.Day(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSnapshots struct {
	snap  *domain.MiddaySnapshot
	saved int
}

func (f *fakeSnapshots) Save(ctx context.Context, snap domain.MiddaySnapshot) error {
	f.snap = &snap
	f.saved++
	return nil
}

func (f *fakeSnapshots) Load(ctx context.Context, date time.Time) (domain.MiddaySnapshot, error) {
	if f.snap == nil || !domain.SameDay(f.snap.Date, date) {
		return domain.MiddaySnapshot{}, domain.ErrNotFound
	}
	return *f.snap, nil
}

type fakeCharts struct {
	err error
}

func (f *fakeCharts) RenderBar(prices map[string]decimal.Decimal, date time.Time, brand string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-bar"), nil
}

func (f *fakeCharts) RenderTrend(rows []domain.PriceRow, brand, caption string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-trend"), nil
}

type fakePublisher struct {
	err   error
	texts []string
	image []byte
}

func (f *fakePublisher) Publish(ctx context.Context, text string, image []byte) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	f.image = image
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

// tuesday is a plain weekday for daily runs.
var tuesday = time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

func newRunner(board *fakeBoard, rate *fakeRate, ledger *fakeLedger, snaps *fakeSnapshots, pub *fakePublisher, now time.Time) *Runner {
	return &Runner{
		Brand:     "AgroBot",
		Board:     board,
		Rate:      rate,
		Urea:      &fakeUrea{price: dec("760")},
		Ledger:    ledger,
		Snapshots: snaps,
		Charts:    &fakeCharts{},
		Publisher: pub,
		Formatter: report.NewFormatter(),
		Now:       func() time.Time { return now },
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunMidday(t *testing.T) {
	board := &fakeBoard{quote: domain.BoardQuote{Date: tuesday, Soja: nd("440000")}}
	ledger := &fakeLedger{}
	snaps := &fakeSnapshots{}
	pub := &fakePublisher{}

	r := newRunner(board, &fakeRate{rate: dec("900")}, ledger, snaps, pub, tuesday)
	res, err := r.Run(context.Background(), ModeMidday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Published {
		t.Error("res.Published = false")
	}

	if len(ledger.rows) != 1 || !ledger.rows[0].Soja.Valid {
		t.Fatalf("ledger rows = %+v, want one row with soja", ledger.rows)
	}
	if got := ledger.rows[0].Soja.Decimal.StringFixed(2); got != "488.89" {
		t.Errorf("ledger soja = %s, want 488.89", got)
	}
	if ledger.rows[0].Maiz.Valid || ledger.rows[0].Trigo.Valid {
		t.Error("absent board values must stay absent in the ledger")
	}

	if snaps.snap == nil {
		t.Fatal("midday snapshot not saved")
	}
	if got := snaps.snap.Prices[domain.LabelSoja].StringFixed(2); got != "488.89" {
		t.Errorf("snapshot soja = %s, want 488.89", got)
	}
	if _, ok := snaps.snap.Prices[domain.LabelUrea]; !ok {
		t.Error("snapshot missing urea reference")
	}

	if len(pub.texts) != 1 || !strings.Contains(pub.texts[0], "488.89") {
		t.Errorf("published text = %q", pub.texts)
	}
	if pub.image == nil {
		t.Error("midday publish missing chart image")
	}
}

func TestRunCloseIntradayDelta(t *testing.T) {
	board := &fakeBoard{quote: domain.BoardQuote{Date: tuesday, Soja: nd("450000")}}
	ledger := &fakeLedger{}
	snaps := &fakeSnapshots{snap: &domain.MiddaySnapshot{
		Date: tuesday,
		Prices: map[string]decimal.Decimal{
			domain.LabelSoja: dec("488.89"),
			domain.LabelUrea: dec("760.00"),
		},
	}}
	pub := &fakePublisher{}

	r := newRunner(board, &fakeRate{rate: dec("905")}, ledger, snaps, pub, tuesday)
	res, err := r.Run(context.Background(), ModeClose)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 450000/905 = 497.24; 497.24 - 488.89 = 8.35, shown rounded to one decimal.
	if !strings.Contains(res.Text, "Soja: +8.4 USD") {
		t.Errorf("close text missing intraday delta:\n%s", res.Text)
	}
	if snaps.saved != 0 {
		t.Error("close run must not overwrite the midday snapshot")
	}
	if ledger.upserts != 1 {
		t.Errorf("ledger upserts = %d, want 1", ledger.upserts)
	}
}

func TestRunCloseWithoutSnapshot(t *testing.T) {
	board := &fakeBoard{quote: domain.BoardQuote{Date: tuesday, Soja: nd("450000")}}
	pub := &fakePublisher{}

	r := newRunner(board, &fakeRate{rate: dec("905")}, &fakeLedger{}, &fakeSnapshots{}, pub, tuesday)
	res, err := r.Run(context.Background(), ModeClose)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(res.Text, "Variación intradía") {
		t.Errorf("delta line present without a snapshot:\n%s", res.Text)
	}
}

func TestRunWeekendGuard(t *testing.T) {
	saturday := time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC)
	pub := &fakePublisher{}

	r := newRunner(&fakeBoard{}, &fakeRate{rate: dec("900")}, &fakeLedger{}, &fakeSnapshots{}, pub, saturday)
	res, err := r.Run(context.Background(), ModeMidday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.SkippedWeekend {
		t.Error("res.SkippedWeekend = false")
	}
	if res.Published || len(pub.texts) != 0 {
		t.Error("weekend run must not publish")
	}
}

func TestRunEmptyBoardMinimalStatus(t *testing.T) {
	board := &fakeBoard{quote: domain.BoardQuote{Date: tuesday}}
	pub := &fakePublisher{}

	r := newRunner(board, &fakeRate{rate: dec("905")}, &fakeLedger{}, &fakeSnapshots{}, pub, tuesday)
	res, err := r.Run(context.Background(), ModeMidday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.NoData || !res.Published {
		t.Errorf("res = %+v, want NoData and Published", res)
	}
	if !strings.Contains(res.Text, "Sin datos de pizarra hoy.") {
		t.Errorf("text = %q", res.Text)
	}
	if pub.image != nil {
		t.Error("minimal status must publish without an image")
	}
}

func TestRunBoardFetchFailureDegrades(t *testing.T) {
	board := &fakeBoard{err: domain.ErrSourceUnavailable}
	pub := &fakePublisher{}

	r := newRunner(board, &fakeRate{rate: dec("905")}, &fakeLedger{}, &fakeSnapshots{}, pub, tuesday)
	res, err := r.Run(context.Background(), ModeMidday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.NoData {
		t.Error("board failure should degrade to a no-data run")
	}
}

func TestRunRateFailureIsFatal(t *testing.T) {
	pub := &fakePublisher{}
	r := newRunner(&fakeBoard{}, &fakeRate{err: domain.ErrSourceUnavailable}, &fakeLedger{}, &fakeSnapshots{}, pub, tuesday)

	_, err := r.Run(context.Background(), ModeMidday)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if len(pub.texts) != 0 {
		t.Error("failed run must not publish from the orchestrator")
	}
}

func TestRunWeekly(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{}
	for d := 0; d < 7; d++ {
		ledger.rows = append(ledger.rows, domain.PriceRow{
			Date: sunday.AddDate(0, 0, -d),
			Soja: nd("490"),
		})
	}
	for d := 7; d < 14; d++ {
		ledger.rows = append(ledger.rows, domain.PriceRow{
			Date: sunday.AddDate(0, 0, -d),
			Soja: nd("475"),
		})
	}
	pub := &fakePublisher{}

	r := newRunner(&fakeBoard{}, &fakeRate{rate: dec("900")}, ledger, &fakeSnapshots{}, pub, sunday)
	res, err := r.Run(context.Background(), ModeWeekly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Published {
		t.Error("res.Published = false")
	}
	if !strings.Contains(res.Text, "Soja: prom. USD 490.0/t (vs semana pasada +15.0)") {
		t.Errorf("weekly text:\n%s", res.Text)
	}
	if ledger.upserts != 0 {
		t.Errorf("weekly run wrote %d ledger rows, want 0", ledger.upserts)
	}
	if pub.image == nil {
		t.Error("weekly publish missing trend chart")
	}
}

func TestRunWeeklyEmptyLedger(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	pub := &fakePublisher{}

	r := newRunner(&fakeBoard{}, &fakeRate{rate: dec("900")}, &fakeLedger{}, &fakeSnapshots{}, pub, sunday)
	res, err := r.Run(context.Background(), ModeWeekly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.NoData {
		t.Error("res.NoData = false")
	}
	if pub.image != nil {
		t.Error("empty week must publish text only")
	}
}

func TestRunPublishFailurePropagates(t *testing.T) {
	board := &fakeBoard{quote: domain.BoardQuote{Date: tuesday, Soja: nd("440000")}}
	pub := &fakePublisher{err: domain.ErrPublishFailed}

	r := newRunner(board, &fakeRate{rate: dec("900")}, &fakeLedger{}, &fakeSnapshots{}, pub, tuesday)
	res, err := r.Run(context.Background(), ModeMidday)
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed", err)
	}
	if res.Published {
		t.Error("res.Published = true after failed publish")
	}
	if res.Text == "" {
		t.Error("res.Text should carry the prepared text for diagnostics")
	}
}
