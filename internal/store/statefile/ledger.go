// Package statefile implements the domain store interfaces on plain files
// under the bot's state directory: the daily ledger as a CSV table and the
// midday snapshot as a single JSON record. Writes are whole-file rewrites
// through a temp file + rename, so a crashed run never leaves a half-written
// store behind.
package statefile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

const ledgerFile = "daily.csv"

var ledgerHeader = []string{"date", "soja", "maiz", "trigo"}

// Ledger is the CSV-backed daily ledger. One row per calendar date, sorted
// ascending, empty cell = absent value.
type Ledger struct {
	dir  string
	path string
}

// NewLedger creates a Ledger rooted at dir. The directory is created on the
// first write, not here.
func NewLedger(dir string) *Ledger {
	return &Ledger{dir: dir, path: filepath.Join(dir, ledgerFile)}
}

// Path returns the location of the CSV file. The archiver uploads it as-is.
func (l *Ledger) Path() string {
	return l.path
}

// Upsert implements domain.DailyLedger. The whole table is loaded, the row
// for the date replaced or appended, and the file rewritten sorted by date.
func (l *Ledger) Upsert(ctx context.Context, row domain.PriceRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows, err := l.load()
	if err != nil {
		return err
	}

	key := domain.Day(row.Date)
	found := false
	for i := range rows {
		if domain.Day(rows[i].Date) == key {
			rows[i] = row
			found = true
			break
		}
	}
	if !found {
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	return l.write(rows)
}

// ReadWindow implements domain.DailyLedger.
func (l *Ledger) ReadWindow(ctx context.Context, end time.Time, days int) ([]domain.PriceRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := l.load()
	if err != nil {
		return nil, err
	}

	startKey := domain.Day(end.AddDate(0, 0, -(days - 1)))
	endKey := domain.Day(end)

	var out []domain.PriceRow
	for _, r := range rows {
		key := domain.Day(r.Date)
		if key >= startKey && key <= endKey {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (l *Ledger) load() ([]domain.PriceRow, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("statefile: open ledger: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("statefile: read ledger: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([]domain.PriceRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 4 {
			return nil, fmt.Errorf("statefile: ledger row has %d columns, want 4", len(rec))
		}
		date, err := time.Parse(time.DateOnly, rec[0])
		if err != nil {
			return nil, fmt.Errorf("statefile: ledger date %q: %w", rec[0], err)
		}
		row := domain.PriceRow{Date: date}
		if row.Soja, err = parseCell(rec[1]); err != nil {
			return nil, fmt.Errorf("statefile: ledger soja %q: %w", rec[1], err)
		}
		if row.Maiz, err = parseCell(rec[2]); err != nil {
			return nil, fmt.Errorf("statefile: ledger maiz %q: %w", rec[2], err)
		}
		if row.Trigo, err = parseCell(rec[3]); err != nil {
			return nil, fmt.Errorf("statefile: ledger trigo %q: %w", rec[3], err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Ledger) write(rows []domain.PriceRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, ledgerHeader)
	for _, r := range rows {
		records = append(records, []string{
			domain.Day(r.Date),
			formatCell(r.Soja),
			formatCell(r.Maiz),
			formatCell(r.Trigo),
		})
	}

	return writeAtomic(l.dir, l.path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.WriteAll(records); err != nil {
			return fmt.Errorf("statefile: write ledger rows: %w", err)
		}
		w.Flush()
		return w.Error()
	})
}

func parseCell(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formatCell(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}
