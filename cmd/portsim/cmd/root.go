package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/portsim/config"
	"github.com/rustyeddy/portsim/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "portsim",
	Short: "A bar-driven portfolio backtesting engine",
	Long: `Portsim replays daily or intraday bars through a trading strategy and
reports what the portfolio would have done.

It provides tools for:
  - Backtesting long-only strategies with commission and slippage models
  - Sweeping position sizes concurrently
  - Risk and performance metrics (Sharpe, Sortino, drawdown, VaR, CVaR)
  - Journaling runs, trades and equity curves to CSV or SQLite`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	cfgPath  string
	logLevel string
	logDev   bool

	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	_ = logger.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&logDev, "dev", false, "human readable console logs")
}

func setup(cmd *cobra.Command, args []string) error {
	l, err := logging.New(logLevel, logDev)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadConfig returns the file config when --config is set and the defaults
// otherwise.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
