package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stream-accounting/internal/domain"
	"stream-accounting/internal/observability"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
)

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

func observeQuery(operation string, started time.Time, err error) {
	observability.RecordDBQuery("postgres", operation, time.Since(started).Seconds(), err)
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// NUMERIC columns travel as text in both directions so no precision is lost.
func parseNumeric(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// partiesClause filters rows on the address columns. $4 holds the queried addresses, $5 the
// counterparties (empty means any).
func partiesClause(fromCol, toCol string) string {
	return fmt.Sprintf(`(
		(cardinality($5::text[]) = 0 AND (%[1]s = ANY($4::text[]) OR %[2]s = ANY($4::text[])))
		OR (%[1]s = ANY($4::text[]) AND %[2]s = ANY($5::text[]))
		OR (%[1]s = ANY($5::text[]) AND %[2]s = ANY($4::text[]))
	)`, fromCol, toCol)
}

func normalizedParties(q domain.LedgerQuery) (addresses, counterparties []string) {
	addresses = make([]string, 0, len(q.Addresses))
	for _, a := range q.Addresses {
		addresses = append(addresses, domain.NormalizeAddress(a))
	}
	counterparties = make([]string, 0, len(q.Counterparties))
	for _, c := range q.Counterparties {
		counterparties = append(counterparties, domain.NormalizeAddress(c))
	}
	return addresses, counterparties
}
