package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

const snapshotKey = "agrobot:mediodia"

// The TTL is hygiene only: the date check on Load is what actually prevents
// a stale snapshot from leaking into a later close run.
const snapshotTTL = 48 * time.Hour

type snapshotRecord struct {
	Date   string                     `json:"date"`
	Prices map[string]decimal.Decimal `json:"prices_usd"`
}

// SnapshotCache implements domain.SnapshotCache on a single Redis key.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// Save implements domain.SnapshotCache.
func (c *SnapshotCache) Save(ctx context.Context, snap domain.MiddaySnapshot) error {
	rec := snapshotRecord{Date: domain.Day(snap.Date), Prices: snap.Prices}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: save snapshot: %w", err)
	}
	return nil
}

// Load implements domain.SnapshotCache.
func (c *SnapshotCache) Load(ctx context.Context, date time.Time) (domain.MiddaySnapshot, error) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MiddaySnapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("redis: load snapshot: %w", err)
	}

	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	if rec.Date != domain.Day(date) {
		return domain.MiddaySnapshot{}, domain.ErrNotFound
	}

	stored, err := time.Parse(time.DateOnly, rec.Date)
	if err != nil {
		return domain.MiddaySnapshot{}, fmt.Errorf("redis: snapshot date %q: %w", rec.Date, err)
	}
	return domain.MiddaySnapshot{Date: stored, Prices: rec.Prices}, nil
}
