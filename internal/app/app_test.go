package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config
	cfg.Storage.Mode = StorageMemory
	cfg.Ledger.Source = LedgerSubgraph
	cfg.Ledger.Timeout = time.Second
	cfg.Ledger.MaxRetries = 1
	cfg.Ledger.PageSize = 100
	cfg.Coingecko.BaseURL = "http://127.0.0.1:0"
	cfg.Coingecko.Timeout = time.Second
	cfg.Coingecko.CoinListTTL = time.Hour
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "memory and subgraph", modify: func(*Config) {}},
		{
			name: "postgres with dsn",
			modify: func(c *Config) {
				c.Storage.Mode = StoragePostgres
				c.Storage.PostgresDSN = "postgres://localhost/accounting"
				c.Ledger.Source = LedgerPostgres
			},
		},
		{
			name:    "unknown storage",
			modify:  func(c *Config) { c.Storage.Mode = "sqlite" },
			wantErr: "unknown storage mode",
		},
		{
			name:    "postgres without dsn",
			modify:  func(c *Config) { c.Storage.Mode = StoragePostgres },
			wantErr: "needs a postgres dsn",
		},
		{
			name:    "postgres ledger on memory storage",
			modify:  func(c *Config) { c.Ledger.Source = LedgerPostgres },
			wantErr: "needs postgres storage",
		},
		{
			name:    "unknown ledger source",
			modify:  func(c *Config) { c.Ledger.Source = "rpc" },
			wantErr: "unknown ledger source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_Memory(t *testing.T) {
	c, err := Build(context.Background(), validConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Orchestrator)
	assert.NotNil(t, c.Prices)
	assert.NotNil(t, c.Subgraph)
	assert.Nil(t, c.Syncer, "memory storage has nothing to sync into")
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Mode = "bogus"

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestComponentsClose_ReverseOrder(t *testing.T) {
	var order []int
	c := &Components{closers: []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}}

	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)
}
