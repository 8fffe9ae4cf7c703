package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

// LedgerStore implements domain.DailyLedger on a single daily_prices table.
// Unlike the file backend there is no whole-file rewrite; the upsert is a
// plain ON CONFLICT update, which also makes concurrent invocations safe.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore creates a LedgerStore and ensures its schema exists.
func NewLedgerStore(ctx context.Context, c *Client) (*LedgerStore, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS daily_prices (
			day   DATE PRIMARY KEY,
			soja  NUMERIC(12, 2),
			maiz  NUMERIC(12, 2),
			trigo NUMERIC(12, 2)
		);`
	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: ensure daily_prices table: %w", err)
	}
	return &LedgerStore{pool: c.pool}, nil
}

// Upsert implements domain.DailyLedger. All three value columns are
// overwritten, so an absent value clears any previously stored one.
func (s *LedgerStore) Upsert(ctx context.Context, row domain.PriceRow) error {
	const q = `
		INSERT INTO daily_prices (day, soja, maiz, trigo)
		VALUES ($1, $2::numeric, $3::numeric, $4::numeric)
		ON CONFLICT (day) DO UPDATE
		SET soja = EXCLUDED.soja, maiz = EXCLUDED.maiz, trigo = EXCLUDED.trigo`

	_, err := s.pool.Exec(ctx, q,
		domain.Day(row.Date),
		cellParam(row.Soja),
		cellParam(row.Maiz),
		cellParam(row.Trigo),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert daily row %s: %w", domain.Day(row.Date), err)
	}
	return nil
}

// ReadWindow implements domain.DailyLedger.
func (s *LedgerStore) ReadWindow(ctx context.Context, end time.Time, days int) ([]domain.PriceRow, error) {
	const q = `
		SELECT day, soja::text, maiz::text, trigo::text
		FROM daily_prices
		WHERE day BETWEEN $1 AND $2
		ORDER BY day ASC`

	start := end.AddDate(0, 0, -(days - 1))
	rows, err := s.pool.Query(ctx, q, domain.Day(start), domain.Day(end))
	if err != nil {
		return nil, fmt.Errorf("postgres: read window ending %s: %w", domain.Day(end), err)
	}
	defer rows.Close()

	var out []domain.PriceRow
	for rows.Next() {
		var (
			day               time.Time
			soja, maiz, trigo *string
		)
		if err := rows.Scan(&day, &soja, &maiz, &trigo); err != nil {
			return nil, fmt.Errorf("postgres: scan daily row: %w", err)
		}
		row := domain.PriceRow{Date: day.UTC()}
		if row.Soja, err = cellValue(soja); err != nil {
			return nil, fmt.Errorf("postgres: soja value: %w", err)
		}
		if row.Maiz, err = cellValue(maiz); err != nil {
			return nil, fmt.Errorf("postgres: maiz value: %w", err)
		}
		if row.Trigo, err = cellValue(trigo); err != nil {
			return nil, fmt.Errorf("postgres: trigo value: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate daily rows: %w", err)
	}
	return out, nil
}

func cellParam(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.StringFixed(2)
	return &s
}

func cellValue(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
