package domain

import (
	"context"
	"time"
)

// DailyLedger is the durable per-date table of converted commodity prices.
// Implementations rewrite the backing store in full on every upsert; the
// expected scale is one row per day.
type DailyLedger interface {
	// Upsert overwrites the row for row.Date if one exists, otherwise appends
	// it. After the call the store is sorted ascending by date.
	Upsert(ctx context.Context, row PriceRow) error

	// ReadWindow returns the rows whose date lies in [end-(days-1), end],
	// ascending by date. Dates with no recorded row are simply absent from
	// the result. A missing backing store yields an empty result, not an
	// error.
	ReadWindow(ctx context.Context, end time.Time, days int) ([]PriceRow, error)
}

// SnapshotCache is the single-slot store for the midday snapshot.
type SnapshotCache interface {
	// Save unconditionally overwrites the stored snapshot.
	Save(ctx context.Context, snap MiddaySnapshot) error

	// Load returns the stored snapshot only if its date equals date exactly;
	// otherwise it returns ErrNotFound. This keeps close-run deltas scoped to
	// the same day's midday run.
	Load(ctx context.Context, date time.Time) (MiddaySnapshot, error)
}
