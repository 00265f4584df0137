package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/portsim/backtest"
	"github.com/rustyeddy/portsim/config"
	"github.com/rustyeddy/portsim/id"
	"github.com/rustyeddy/portsim/journal"
	"github.com/rustyeddy/portsim/market"
	"github.com/rustyeddy/portsim/strategies"
	"go.uber.org/zap"
)

// loadBars reads the configured data source and applies the date range.
func loadBars(ctx context.Context, d config.DataConfig) ([]market.Bar, error) {
	from, to, err := d.Range()
	if err != nil {
		return nil, err
	}

	switch d.Source {
	case "duckdb":
		db := market.NewDuckDB(d.Path)
		if err := db.Connect(); err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadBars(ctx, d.Table, d.Symbol, from, to)

	default:
		bars, err := market.LoadCSV(d.Path, d.Symbol)
		if err != nil {
			return nil, err
		}
		return market.Between(bars, from, to), nil
	}
}

func strategyFactory(cfg config.StrategyConfig) func() (backtest.Strategy, error) {
	return func() (backtest.Strategy, error) {
		return strategies.ByName(cfg.Name, cfg.Params)
	}
}

func engineOptions(cfg *config.Config) ([]backtest.Option, error) {
	comm, slip, err := cfg.Costs.Models()
	if err != nil {
		return nil, err
	}
	return []backtest.Option{
		backtest.WithLogger(logger),
		backtest.WithCommission(comm),
		backtest.WithSlippage(slip),
	}, nil
}

// openRecorder returns nil when journaling is off.
func openRecorder(j config.JournalConfig) (journal.Recorder, error) {
	switch j.Type {
	case "csv":
		return journal.NewCSV(j.Dir)
	case "sqlite":
		return journal.NewSQLite(j.DBPath)
	default:
		return nil, nil
	}
}

// record persists a finished run and, when an org directory is set, writes
// the run report next to it. It returns the run ID.
func record(cfg *config.Config, res backtest.Result, raw []byte) (string, error) {
	rec, err := openRecorder(cfg.Journal)
	if err != nil {
		return "", fmt.Errorf("open journal: %w", err)
	}
	if rec == nil {
		return "", nil
	}

	run := res.JournalRun(id.New())
	run.Created = time.Now().UTC()
	run.Dataset = cfg.Data.Path
	run.Config = raw
	run.Fraction = cfg.Engine().Fraction
	run.Commission = cfg.Costs.Commission
	run.Slippage = cfg.Costs.Slippage
	if cfg.Journal.OrgDir != "" {
		if err := os.MkdirAll(cfg.Journal.OrgDir, 0o755); err != nil {
			rec.Close()
			return "", fmt.Errorf("org dir: %w", err)
		}
		run.OrgPath = filepath.Join(cfg.Journal.OrgDir, run.RunID+".org")
	}

	err = journal.Export(rec, run, res.Trades, res.Equity)
	if cerr := rec.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	if run.OrgPath != "" {
		if err := run.WriteOrg(); err != nil {
			return "", err
		}
	}

	logger.Info("run journaled",
		zap.String("run_id", run.RunID),
		zap.String("journal", cfg.Journal.Type),
		zap.Int("trades", len(res.Trades)))
	return run.RunID, nil
}
