package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

const snapshotFile = "mediodia.json"

// snapshotRecord is the on-disk shape of the midday snapshot.
type snapshotRecord struct {
	Date   string                     `json:"date"`
	Prices map[string]decimal.Decimal `json:"prices_usd"`
}

// SnapshotCache is the JSON-backed single-slot midday snapshot store.
type SnapshotCache struct {
	dir  string
	path string
}

// NewSnapshotCache creates a SnapshotCache rooted at dir.
func NewSnapshotCache(dir string) *SnapshotCache {
	return &SnapshotCache{dir: dir, path: filepath.Join(dir, snapshotFile)}
}

// Save implements domain.SnapshotCache.
func (c *SnapshotCache) Save(ctx context.Context, snap domain.MiddaySnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := snapshotRecord{
		Date:   domain.Day(snap.Date),
		Prices: snap.Prices,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("statefile: marshal snapshot: %w", err)
	}

	return writeAtomic(c.dir, c.path, func(f *os.File) error {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("statefile: write snapshot: %w", err)
		}
		return nil
	})
}

// Load implements domain.SnapshotCache. A snapshot stored for any other date
// is reported as domain.ErrNotFound, never returned stale.
func (c *SnapshotCache) Load(ctx context.Context, date time.Time) (domain.MiddaySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.MiddaySnapshot{}, err
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.MiddaySnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("statefile: read snapshot: %w", err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("statefile: decode snapshot: %w", err)
	}

	if rec.Date != domain.Day(date) {
		return domain.MiddaySnapshot{}, domain.ErrNotFound
	}

	stored, err := time.Parse(time.DateOnly, rec.Date)
	if err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("statefile: snapshot date %q: %w", rec.Date, err)
	}
	return domain.MiddaySnapshot{Date: stored, Prices: rec.Prices}, nil
}
