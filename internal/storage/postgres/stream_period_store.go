package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// StreamPeriodStore implements storage.StreamPeriodStore using PostgreSQL.
type StreamPeriodStore struct {
	pool *Pool
}

// NewStreamPeriodStore creates a new StreamPeriodStore.
func NewStreamPeriodStore(pool *Pool) *StreamPeriodStore {
	return &StreamPeriodStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StreamPeriodStore = (*StreamPeriodStore)(nil)

const streamPeriodColumns = `
	chain_id, id, token_id, token_symbol, token_name, token_underlying, token_decimals,
	sender, receiver, flow_rate::text, started_at, started_at_block, started_at_tx,
	stopped_at, stopped_at_block, stopped_at_tx, total_amount_streamed::text
`

// Upsert inserts a stream period or replaces the stored one with the same (chain_id, id).
func (s *StreamPeriodStore) Upsert(ctx context.Context, p *domain.StreamPeriod) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO stream_periods (
			chain_id, id, token_id, token_symbol, token_name, token_underlying, token_decimals,
			sender, receiver, flow_rate, started_at, started_at_block, started_at_tx,
			stopped_at, stopped_at_block, stopped_at_tx, total_amount_streamed
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10::text::numeric, $11, $12, $13,
			$14, $15, $16, $17::text::numeric
		)
		ON CONFLICT (chain_id, id) DO UPDATE
		SET flow_rate = EXCLUDED.flow_rate,
		    stopped_at = EXCLUDED.stopped_at,
		    stopped_at_block = EXCLUDED.stopped_at_block,
		    stopped_at_tx = EXCLUDED.stopped_at_tx,
		    total_amount_streamed = EXCLUDED.total_amount_streamed,
		    updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query,
		p.ChainID,
		p.ID,
		domain.NormalizeAddress(p.Token.ID),
		p.Token.Symbol,
		p.Token.Name,
		domain.NormalizeAddress(p.Token.UnderlyingAddress),
		p.Token.Decimals,
		domain.NormalizeAddress(p.Sender),
		domain.NormalizeAddress(p.Receiver),
		p.FlowRate.String(),
		p.StartedAtTimestamp,
		p.StartedAtBlockNumber,
		p.StartedAtTxHash,
		p.StoppedAtTimestamp,
		p.StoppedAtBlockNumber,
		p.StoppedAtTxHash,
		p.TotalAmountStreamed.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert stream period: %w", err)
	}
	return nil
}

// GetByID retrieves a stream period. Returns ErrNotFound if not exists.
func (s *StreamPeriodStore) GetByID(ctx context.Context, chainID int64, id string) (*domain.StreamPeriod, error) {
	query := `SELECT ` + streamPeriodColumns + `
		FROM stream_periods
		WHERE chain_id = $1 AND id = $2
	`

	rows, err := s.pool.Query(ctx, query, chainID, id)
	if err != nil {
		return nil, fmt.Errorf("get stream period: %w", err)
	}
	defer rows.Close()

	periods, err := scanStreamPeriods(rows)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, storage.ErrNotFound
	}
	return periods[0], nil
}

// Query retrieves stream periods matching q, ordered by started_at ASC, id ASC.
func (s *StreamPeriodStore) Query(ctx context.Context, q domain.LedgerQuery) (periods []*domain.StreamPeriod, err error) {
	defer func(started time.Time) { observeQuery("query_stream_periods", started, err) }(time.Now())

	query := `SELECT ` + streamPeriodColumns + `
		FROM stream_periods
		WHERE chain_id = $1
		  AND started_at <= $2
		  AND (stopped_at IS NULL OR stopped_at >= $3)
		  AND ` + partiesClause("sender", "receiver") + `
		ORDER BY started_at ASC, id ASC
	`

	addresses, counterparties := normalizedParties(q)
	rows, err := s.pool.Query(ctx, query, q.ChainID, q.End, q.Start, addresses, counterparties)
	if err != nil {
		return nil, fmt.Errorf("query stream periods: %w", err)
	}
	defer rows.Close()

	return scanStreamPeriods(rows)
}

// scanStreamPeriods scans multiple rows into a slice of StreamPeriod.
func scanStreamPeriods(rows pgx.Rows) ([]*domain.StreamPeriod, error) {
	var periods []*domain.StreamPeriod

	for rows.Next() {
		var p domain.StreamPeriod
		var flowRate, total string

		err := rows.Scan(
			&p.ChainID,
			&p.ID,
			&p.Token.ID,
			&p.Token.Symbol,
			&p.Token.Name,
			&p.Token.UnderlyingAddress,
			&p.Token.Decimals,
			&p.Sender,
			&p.Receiver,
			&flowRate,
			&p.StartedAtTimestamp,
			&p.StartedAtBlockNumber,
			&p.StartedAtTxHash,
			&p.StoppedAtTimestamp,
			&p.StoppedAtBlockNumber,
			&p.StoppedAtTxHash,
			&total,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stream period row: %w", err)
		}

		if p.FlowRate, err = parseNumeric(flowRate); err != nil {
			return nil, fmt.Errorf("stream period %s flow rate: %w", p.ID, err)
		}
		if p.TotalAmountStreamed, err = parseNumeric(total); err != nil {
			return nil, fmt.Errorf("stream period %s total: %w", p.ID, err)
		}

		periods = append(periods, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream period rows: %w", err)
	}

	return periods, nil
}
