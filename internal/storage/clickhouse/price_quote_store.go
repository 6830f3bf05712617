package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
	"stream-accounting/internal/storage"
)

// PriceQuoteStore implements storage.PriceQuoteStore using ClickHouse.
// The price_quotes table is a ReplacingMergeTree, so re-archiving a quote replaces it and
// reads use FINAL.
type PriceQuoteStore struct {
	conn *Conn
}

// NewPriceQuoteStore creates a new PriceQuoteStore.
func NewPriceQuoteStore(conn *Conn) *PriceQuoteStore {
	return &PriceQuoteStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)

// Upsert stores quotes in one batch.
func (s *PriceQuoteStore) Upsert(ctx context.Context, quotes []*domain.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	for _, q := range quotes {
		if q == nil || q.CoinID == "" || q.Currency == "" || q.Timestamp < 0 {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_quotes (coin_id, currency, timestamp, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, q := range quotes {
		if err := batch.Append(q.CoinID, q.Currency, uint64(q.Timestamp), q.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves quotes within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceQuoteStore) GetByTimeRange(ctx context.Context, coinID, currency string, start, end int64) (quotes []*domain.PriceQuote, err error) {
	defer func(started time.Time) {
		observability.RecordDBQuery("clickhouse", "price_quotes_by_time_range", time.Since(started).Seconds(), err)
	}(time.Now())

	query := `
		SELECT coin_id, currency, timestamp, price
		FROM price_quotes FINAL
		WHERE coin_id = ? AND currency = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, coinID, currency, uint64(max(start, 0)), uint64(max(end, 0)))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPriceQuotes(rows)
}

// scanPriceQuotes scans multiple rows.
func scanPriceQuotes(rows chRows) ([]*domain.PriceQuote, error) {
	var quotes []*domain.PriceQuote

	for rows.Next() {
		var q domain.PriceQuote
		var ts uint64
		var price decimal.Decimal

		if err := rows.Scan(&q.CoinID, &q.Currency, &ts, &price); err != nil {
			return nil, fmt.Errorf("scan price quote row: %w", err)
		}

		q.Timestamp = int64(ts)
		q.Price = price
		quotes = append(quotes, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price quote rows: %w", err)
	}

	return quotes, nil
}
