package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/portsim/backtest"
	"github.com/rustyeddy/portsim/config"
	"github.com/rustyeddy/portsim/strategies"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay bars through a strategy",
	Long: `Backtest loads bars from CSV or DuckDB, replays them through a strategy
and prints the performance report. Flags override the config file.

Supported strategies:
  - noop: never trades (baseline)
  - buy-and-hold: buys on the first bar and holds
  - alternate: buys and sells every N bars
  - always-buy: buys on every bar
  - ma-cross: fast/slow moving average crossover (sma or ema)
  - ma-cross-adx: ma-cross that only acts while ADX shows a trend

Example:
  portsim backtest --data spy.csv --symbol SPY --strategy ma-cross --fast 10 --slow 30`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btData       string
	btSymbol     string
	btFrom       string
	btTo         string
	btStrategy   string
	btFast       int
	btSlow       int
	btEvery      int
	btKind       string
	btADX        int
	btADXMin     float64
	btCash       float64
	btFraction   float64
	btExitFull   bool
	btCommission string
	btSlippage   string
	btJournal    string
	btDBPath     string
	btOut        string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVarP(&btData, "data", "f", "", "path to bar CSV or DuckDB database")
	f.StringVar(&btSymbol, "symbol", "", "symbol the bars belong to")
	f.StringVar(&btFrom, "from", "", "first day to replay (YYYY-MM-DD)")
	f.StringVar(&btTo, "to", "", "replay up to but excluding this day (YYYY-MM-DD)")

	f.StringVarP(&btStrategy, "strategy", "s", "", "strategy name ("+strings.Join(strategies.Names(), ", ")+")")
	f.IntVar(&btFast, "fast", 0, "ma-cross: fast period")
	f.IntVar(&btSlow, "slow", 0, "ma-cross: slow period")
	f.IntVar(&btEvery, "every", 0, "alternate: bars between signals")
	f.StringVar(&btKind, "kind", "", "ma-cross: sma or ema")
	f.IntVar(&btADX, "adx", 0, "ma-cross: ADX trend filter period (0 = off)")
	f.Float64Var(&btADXMin, "adx-threshold", 0, "ma-cross: minimum ADX to act on a cross")

	f.Float64VarP(&btCash, "cash", "b", 0, "starting cash")
	f.Float64Var(&btFraction, "fraction", 0, "fraction of cash per order (0.10 = 10%)")
	f.BoolVar(&btExitFull, "exit-full", true, "sell signals liquidate the whole position")
	f.StringVar(&btCommission, "commission", "", "commission model: none, fixed:<fee>, pct:<rate>")
	f.StringVar(&btSlippage, "slippage", "", "slippage model: none, bps:<bps>, sqrt:<coef>")

	f.StringVar(&btJournal, "journal", "", "journal type: none, csv, sqlite")
	f.StringVarP(&btDBPath, "db", "d", "", "path to SQLite journal DB")
	f.StringVarP(&btOut, "out", "o", "", "write the full result as JSON to this file")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBacktestFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	bars, err := loadBars(cmd.Context(), cfg.Data)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	strat, err := strategyFactory(cfg.Strategy)()
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	res, err := backtest.New(cfg.Engine(), strat, opts...).RunContext(cmd.Context(), bars)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := res.Print(out); err != nil {
		return err
	}
	res.Log(logger)

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	runID, err := record(cfg, res, raw)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if runID != "" {
		fmt.Fprintf(out, "\nRun ID: %s\n", runID)
	}

	if btOut != "" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := os.WriteFile(btOut, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

// applyBacktestFlags copies every flag the user set onto cfg.
func applyBacktestFlags(fs *pflag.FlagSet, cfg *config.Config) {
	set := fs.Changed

	if set("data") {
		cfg.Data.Path = btData
	}
	if set("symbol") {
		cfg.Data.Symbol = btSymbol
	}
	if set("from") {
		cfg.Data.From = btFrom
	}
	if set("to") {
		cfg.Data.To = btTo
	}
	if set("strategy") {
		cfg.Strategy.Name = btStrategy
	}
	if set("fast") {
		cfg.Strategy.Params.Fast = btFast
	}
	if set("slow") {
		cfg.Strategy.Params.Slow = btSlow
	}
	if set("every") {
		cfg.Strategy.Params.Every = btEvery
	}
	if set("kind") {
		cfg.Strategy.Params.Kind = btKind
	}
	if set("adx") {
		cfg.Strategy.Params.ADX = btADX
	}
	if set("adx-threshold") {
		cfg.Strategy.Params.ADXThreshold = btADXMin
	}
	if set("cash") {
		cfg.Account.Balance = btCash
	}
	if set("fraction") {
		cfg.Sizing.Fraction = btFraction
	}
	if set("exit-full") {
		cfg.Sizing.ExitFull = btExitFull
	}
	if set("commission") {
		cfg.Costs.Commission = btCommission
	}
	if set("slippage") {
		cfg.Costs.Slippage = btSlippage
	}
	if set("journal") {
		cfg.Journal.Type = btJournal
	}
	if set("db") {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}
}
