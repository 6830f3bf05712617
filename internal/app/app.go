// Package app builds the accounting components from configuration.
// Shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stream-accounting/internal/coingecko"
	"stream-accounting/internal/ingestion"
	"stream-accounting/internal/orchestrator"
	"stream-accounting/internal/pricing"
	"stream-accounting/internal/storage"
	chstore "stream-accounting/internal/storage/clickhouse"
	"stream-accounting/internal/storage/memory"
	"stream-accounting/internal/storage/migrations"
	pgstore "stream-accounting/internal/storage/postgres"
	"stream-accounting/internal/subgraph"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "STREAM_ACCOUNTING"

// Storage modes.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Ledger sources.
const (
	LedgerSubgraph = "subgraph"
	LedgerPostgres = "postgres"
)

// Config holds the settings shared by every binary.
type Config struct {
	Storage struct {
		Mode          string `conf:"default:memory"`
		PostgresDSN   string `conf:"optional,noprint"`
		ClickhouseDSN string `conf:"optional,noprint"`
	}
	Ledger struct {
		Source     string        `conf:"default:subgraph"`
		Timeout    time.Duration `conf:"default:30s"`
		MaxRetries int           `conf:"default:3"`
		PageSize   int           `conf:"default:1000"`
	}
	Coingecko struct {
		BaseURL     string        `conf:"default:https://api.coingecko.com/api/v3"`
		APIKey      string        `conf:"optional,noprint"`
		Timeout     time.Duration `conf:"default:30s"`
		MaxRetries  int           `conf:"default:3"`
		CoinListTTL time.Duration `conf:"default:6h"`
	}
}

// Validate checks the combinations the components cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Mode {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("postgres storage needs a postgres dsn")
		}
	default:
		return fmt.Errorf("unknown storage mode %q (want %s or %s)", c.Storage.Mode, StorageMemory, StoragePostgres)
	}

	switch c.Ledger.Source {
	case LedgerSubgraph:
	case LedgerPostgres:
		if c.Storage.Mode != StoragePostgres {
			return errors.New("postgres ledger source needs postgres storage")
		}
	default:
		return fmt.Errorf("unknown ledger source %q (want %s or %s)", c.Ledger.Source, LedgerSubgraph, LedgerPostgres)
	}
	return nil
}

// NewLogger builds the production logger used by the binaries.
func NewLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	return config.Build()
}

// Components is a wired set of services. Close releases its connections.
type Components struct {
	Orchestrator *orchestrator.Orchestrator
	Prices       *pricing.Service
	Subgraph     *subgraph.Client
	// Syncer copies the subgraph ledger into local storage. Nil unless storage is postgres.
	Syncer *ingestion.Syncer

	closers []func()
}

// Close releases every connection opened by Build.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build connects storage, runs migrations and wires the services.
func Build(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	c.Subgraph = subgraph.NewClient(
		subgraph.WithTimeout(cfg.Ledger.Timeout),
		subgraph.WithMaxRetries(cfg.Ledger.MaxRetries),
		subgraph.WithPageSize(cfg.Ledger.PageSize),
	)

	var (
		ledger   orchestrator.LedgerSource = c.Subgraph
		archive  storage.PriceQuoteStore
		progress storage.SyncProgressStore
		streams  storage.StreamPeriodStore
		xfers    storage.TransferStore
	)

	switch cfg.Storage.Mode {
	case StoragePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres migrations applied")

		streams = pgstore.NewStreamPeriodStore(pool)
		xfers = pgstore.NewTransferStore(pool)
		progress = pgstore.NewSyncProgressStore(pool)
	default:
		streams = memory.NewStreamPeriodStore()
		xfers = memory.NewTransferStore()
		progress = memory.NewSyncProgressStore()
	}

	if cfg.Ledger.Source == LedgerPostgres {
		ledger = storage.Ledger{StreamPeriods: streams, Transfers: xfers}
	}
	if cfg.Storage.Mode == StoragePostgres {
		c.Syncer = ingestion.NewSyncer(ingestion.SyncerOptions{
			Source:        c.Subgraph,
			StreamPeriods: streams,
			Transfers:     xfers,
			Progress:      progress,
			Logger:        logger.Named("sync"),
		})
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		c.closers = append(c.closers, func() { _ = conn.Close() })
		archive = chstore.NewPriceQuoteStore(conn)
		logger.Info("price archive on clickhouse")
	} else {
		archive = memory.NewPriceQuoteStore()
	}

	opts := []coingecko.ClientOption{
		coingecko.WithTimeout(cfg.Coingecko.Timeout),
		coingecko.WithMaxRetries(cfg.Coingecko.MaxRetries),
	}
	if cfg.Coingecko.APIKey != "" {
		opts = append(opts, coingecko.WithAPIKey(cfg.Coingecko.APIKey))
	}

	c.Prices = pricing.New(pricing.Options{
		Provider:    coingecko.NewClient(cfg.Coingecko.BaseURL, opts...),
		Archive:     archive,
		CoinListTTL: cfg.Coingecko.CoinListTTL,
		Logger:      logger.Named("pricing"),
	})

	c.Orchestrator = orchestrator.New(orchestrator.Options{
		Ledger: ledger,
		Prices: c.Prices,
		Logger: logger.Named("orchestrator"),
	})

	logger.Infow("components ready",
		"storage", cfg.Storage.Mode,
		"ledger", cfg.Ledger.Source,
		"sync", c.Syncer != nil,
	)
	ok = true
	return c, nil
}
