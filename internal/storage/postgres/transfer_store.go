package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/storage"
)

// TransferStore implements storage.TransferStore using PostgreSQL.
type TransferStore struct {
	pool *Pool
}

// NewTransferStore creates a new TransferStore.
func NewTransferStore(pool *Pool) *TransferStore {
	return &TransferStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransferStore = (*TransferStore)(nil)

const insertTransferQuery = `
	INSERT INTO transfer_events (
		chain_id, id, token_id, token_symbol, token_name, token_underlying, token_decimals,
		sender, receiver, value, timestamp, block_number, tx_hash
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::text::numeric, $11, $12, $13)
`

func transferArgs(t *domain.TransferEvent) []any {
	return []any{
		t.ChainID,
		t.ID,
		domain.NormalizeAddress(t.Token.ID),
		t.Token.Symbol,
		t.Token.Name,
		domain.NormalizeAddress(t.Token.UnderlyingAddress),
		t.Token.Decimals,
		domain.NormalizeAddress(t.From),
		domain.NormalizeAddress(t.To),
		t.Value.String(),
		t.Timestamp,
		t.BlockNumber,
		t.TransactionHash,
	}
}

// Insert adds a new transfer. Returns ErrDuplicateKey if (chain_id, id) exists.
func (s *TransferStore) Insert(ctx context.Context, t *domain.TransferEvent) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTransferQuery, transferArgs(t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// InsertBulk adds multiple transfers atomically. Fails entire batch on any duplicate.
func (s *TransferStore) InsertBulk(ctx context.Context, transfers []*domain.TransferEvent) error {
	if len(transfers) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range transfers {
		if t == nil || t.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertTransferQuery, transferArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert transfer in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Query retrieves transfers matching q, ordered by timestamp ASC, id ASC.
func (s *TransferStore) Query(ctx context.Context, q domain.LedgerQuery) (transfers []*domain.TransferEvent, err error) {
	defer func(started time.Time) { observeQuery("query_transfers", started, err) }(time.Now())

	query := `
		SELECT chain_id, id, token_id, token_symbol, token_name, token_underlying, token_decimals,
		       sender, receiver, value::text, timestamp, block_number, tx_hash
		FROM transfer_events
		WHERE chain_id = $1
		  AND timestamp <= $2
		  AND timestamp >= $3
		  AND ` + partiesClause("sender", "receiver") + `
		ORDER BY timestamp ASC, id ASC
	`

	addresses, counterparties := normalizedParties(q)
	rows, err := s.pool.Query(ctx, query, q.ChainID, q.End, q.Start, addresses, counterparties)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// scanTransfers scans multiple rows into a slice of TransferEvent.
func scanTransfers(rows pgx.Rows) ([]*domain.TransferEvent, error) {
	var transfers []*domain.TransferEvent

	for rows.Next() {
		var t domain.TransferEvent
		var value string

		err := rows.Scan(
			&t.ChainID,
			&t.ID,
			&t.Token.ID,
			&t.Token.Symbol,
			&t.Token.Name,
			&t.Token.UnderlyingAddress,
			&t.Token.Decimals,
			&t.From,
			&t.To,
			&value,
			&t.Timestamp,
			&t.BlockNumber,
			&t.TransactionHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}

		if t.Value, err = parseNumeric(value); err != nil {
			return nil, fmt.Errorf("transfer %s value: %w", t.ID, err)
		}

		transfers = append(transfers, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}

	return transfers, nil
}
