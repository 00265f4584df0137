package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rustyeddy/portsim/backtest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the configured strategy at several position sizes",
	Long: `Sweep runs one backtest per sizing fraction concurrently over the same bars
and prints a comparison table. Strategy, data and costs come from the config
file and the backtest flags.

Example:
  portsim sweep --config spy.yaml --fractions 0.05,0.1,0.25,0.5 --workers 4`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var (
	swFractions []float64
	swWorkers   int
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().Float64SliceVar(&swFractions, "fractions", []float64{0.05, 0.10, 0.25, 0.50}, "sizing fractions to compare")
	sweepCmd.Flags().IntVarP(&swWorkers, "workers", "w", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().AddFlagSet(backtestCmd.Flags())
}

func runSweep(cmd *cobra.Command, args []string) error {
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
	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	jobs := make([]backtest.Job, 0, len(swFractions))
	for _, fr := range swFractions {
		ec := cfg.Engine()
		ec.Fraction = fr
		jobs = append(jobs, backtest.Job{
			Name:     fmt.Sprintf("%s@%.2f", cfg.Strategy.Name, fr),
			Config:   ec,
			Strategy: strategyFactory(cfg.Strategy),
			Bars:     bars,
			Options:  opts,
		})
	}

	logger.Info("sweep start", zap.Int("jobs", len(jobs)), zap.Int("bars", len(bars)))
	results, err := backtest.RunBatch(cmd.Context(), jobs, swWorkers)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tRETURN\tMAX DD\tSHARPE\tSORTINO\tVAR\tTRADES\tWIN RATE\tFINAL EQUITY")
	for _, r := range results {
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%.2f%%\t%.2f%%\t%.3f\t%s\t%.4f\t%d\t%.1f%%\t%s\n",
			r.Strategy,
			m.TotalReturn*100,
			m.MaxDrawdown.Value*100,
			m.Sharpe,
			m.Sortino,
			m.VaRHistorical,
			m.Trades.Total,
			m.Trades.WinRate*100,
			r.FinalEquity().StringFixed(2))
	}
	return tw.Flush()
}
