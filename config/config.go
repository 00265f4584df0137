package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/portsim/backtest"
	"github.com/rustyeddy/portsim/cost"
	"github.com/rustyeddy/portsim/metrics"
	"github.com/rustyeddy/portsim/strategies"
	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration
type Config struct {
	Account  AccountConfig   `json:"account" yaml:"account"`
	Data     DataConfig      `json:"data" yaml:"data"`
	Strategy StrategyConfig  `json:"strategy" yaml:"strategy"`
	Costs    CostsConfig     `json:"costs" yaml:"costs"`
	Sizing   SizingConfig    `json:"sizing" yaml:"sizing"`
	Metrics  metrics.Options `json:"metrics" yaml:"metrics"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
	Seed     int64   `json:"seed" yaml:"seed"`
}

// DataConfig says where bars come from
type DataConfig struct {
	Source string `json:"source" yaml:"source"` // "csv" or "duckdb"
	Path   string `json:"path" yaml:"path"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
	Symbol string `json:"symbol" yaml:"symbol"`
	From   string `json:"from,omitempty" yaml:"from,omitempty"` // YYYY-MM-DD, inclusive
	To     string `json:"to,omitempty" yaml:"to,omitempty"`     // YYYY-MM-DD, exclusive
}

// Range parses From and To. Empty bounds come back as zero times.
func (d DataConfig) Range() (from, to time.Time, err error) {
	if from, err = parseDay(d.From); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data.from: %w", err)
	}
	if to, err = parseDay(d.To); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data.to: %w", err)
	}
	return from, to, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// StrategyConfig picks a strategy by name
type StrategyConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params strategies.Params `json:"params" yaml:"params"`
}

// CostsConfig holds commission and slippage model specs such as "fixed:1"
// or "bps:5"
type CostsConfig struct {
	Commission string `json:"commission" yaml:"commission"`
	Slippage   string `json:"slippage" yaml:"slippage"`
}

// Models parses both cost specs.
func (c CostsConfig) Models() (cost.Commission, cost.Slippage, error) {
	comm, err := cost.ParseCommission(c.Commission)
	if err != nil {
		return nil, nil, err
	}
	slip, err := cost.ParseSlippage(c.Slippage)
	if err != nil {
		return nil, nil, err
	}
	return comm, slip, nil
}

// SizingConfig contains position sizing parameters
type SizingConfig struct {
	Fraction float64 `json:"fraction" yaml:"fraction"`
	ExitFull bool    `json:"exit_full" yaml:"exit_full"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgDir string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

// Engine converts the account, sizing and metrics sections into an engine
// config.
func (c *Config) Engine() backtest.Config {
	return backtest.Config{
		InitialCash: c.Account.Balance,
		Fraction:    c.Sizing.Fraction,
		ExitFull:    c.Sizing.ExitFull,
		Seed:        c.Account.Seed,
		Metrics:     c.Metrics,
	}
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Data.Source != "csv" && c.Data.Source != "duckdb" {
		return fmt.Errorf("data.source must be 'csv' or 'duckdb'")
	}
	if c.Data.Source == "duckdb" && c.Data.Table == "" {
		return fmt.Errorf("data.table required for duckdb source")
	}
	if _, _, err := c.Data.Range(); err != nil {
		return err
	}
	if _, err := strategies.ByName(c.Strategy.Name, c.Strategy.Params); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, _, err := c.Costs.Models(); err != nil {
		return err
	}
	if c.Sizing.Fraction < 0 || c.Sizing.Fraction > 1 {
		return fmt.Errorf("sizing.fraction must be between 0 and 1")
	}
	if c.Metrics.Confidence < 0 || c.Metrics.Confidence >= 1 {
		return fmt.Errorf("metrics.confidence must be in [0, 1)")
	}
	if c.Metrics.MonteCarloSamples < 0 {
		return fmt.Errorf("metrics.monte_carlo_samples must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  100000,
			Seed:     1,
		},
		Data: DataConfig{
			Source: "csv",
			Path:   "./bars.csv",
			Symbol: "SPY",
		},
		Strategy: StrategyConfig{
			Name: "ma-cross",
			Params: strategies.Params{
				Fast: strategies.DefaultFast,
				Slow: strategies.DefaultSlow,
				Kind: strategies.KindSMA,
			},
		},
		Costs: CostsConfig{
			Commission: "none",
			Slippage:   "none",
		},
		Sizing: SizingConfig{
			Fraction: 0.10,
			ExitFull: true,
		},
		Metrics: metrics.DefaultOptions(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./portsim.sqlite",
		},
	}
}
