package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/portsim/cost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, 100000.0, cfg.Account.Balance)
	assert.Equal(t, 0.10, cfg.Sizing.Fraction)
	assert.Equal(t, 0.95, cfg.Metrics.Confidence)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	with := func(mut func(*Config)) *Config {
		cfg := Default()
		mut(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name:    "missing currency",
			config:  &Config{Account: AccountConfig{Balance: 100000}},
			wantErr: true,
			errMsg:  "account.currency is required",
		},
		{
			name:    "negative balance",
			config:  with(func(c *Config) { c.Account.Balance = -1000 }),
			wantErr: true,
			errMsg:  "account.balance must be positive",
		},
		{
			name:    "unknown data source",
			config:  with(func(c *Config) { c.Data.Source = "parquet" }),
			wantErr: true,
			errMsg:  "data.source",
		},
		{
			name:    "duckdb without table",
			config:  with(func(c *Config) { c.Data.Source = "duckdb" }),
			wantErr: true,
			errMsg:  "data.table required",
		},
		{
			name:    "bad date",
			config:  with(func(c *Config) { c.Data.From = "01/02/2024" }),
			wantErr: true,
			errMsg:  "data.from",
		},
		{
			name:    "unknown strategy",
			config:  with(func(c *Config) { c.Strategy.Name = "martingale" }),
			wantErr: true,
			errMsg:  "unknown strategy",
		},
		{
			name:    "slow not above fast",
			config:  with(func(c *Config) { c.Strategy.Params.Fast, c.Strategy.Params.Slow = 20, 10 }),
			wantErr: true,
			errMsg:  "strategy",
		},
		{
			name:    "bad commission",
			config:  with(func(c *Config) { c.Costs.Commission = "flat:1" }),
			wantErr: true,
			errMsg:  "commission",
		},
		{
			name:    "invalid fraction",
			config:  with(func(c *Config) { c.Sizing.Fraction = 1.5 }),
			wantErr: true,
			errMsg:  "sizing.fraction must be between 0 and 1",
		},
		{
			name:    "confidence of one",
			config:  with(func(c *Config) { c.Metrics.Confidence = 1 }),
			wantErr: true,
			errMsg:  "metrics.confidence",
		},
		{
			name:    "csv journal without dir",
			config:  with(func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }),
			wantErr: true,
			errMsg:  "journal dir required",
		},
		{
			name:    "unknown journal",
			config:  with(func(c *Config) { c.Journal.Type = "postgres" }),
			wantErr: true,
			errMsg:  "journal.type",
		},
		{
			name:    "no journal",
			config:  with(func(c *Config) { c.Journal = JournalConfig{Type: "none"} }),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Costs.Commission = "fixed:1.5"
			cfg.Data.From = "2024-01-01"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: -5\n  currency: USD\n"), 0644))
	_, err = LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestDataRange(t *testing.T) {
	t.Parallel()

	from, to, err := DataConfig{From: "2024-01-01", To: "2024-02-01"}.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), to)

	from, to, err = DataConfig{}.Range()
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestEngineConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Costs = CostsConfig{Commission: "pct:0.001", Slippage: "bps:5"}

	ec := cfg.Engine()
	assert.Equal(t, 100000.0, ec.InitialCash)
	assert.Equal(t, 0.10, ec.Fraction)
	assert.True(t, ec.ExitFull)
	assert.NoError(t, ec.Validate())

	comm, slip, err := cfg.Costs.Models()
	require.NoError(t, err)
	assert.IsType(t, cost.PercentCommission{}, comm)
	assert.IsType(t, cost.FixedBpsSlippage{}, slip)
}
