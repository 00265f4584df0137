package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/portsim/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run and trade journal",
	Long: `Query runs, trades and equity curves stored in the SQLite journal.

Subcommands:
  runs    - List recorded runs, newest first
  run     - Print the Org report of one run
  trades  - List the trades of one run
  trade   - Get details of a specific trade by ID
  day     - List trades closed on a specific day
  equity  - Print the equity curve of one run

Examples:
  portsim journal runs
  portsim journal trades <run-id>
  portsim journal day 2024-01-15`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Print the report of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "Print the equity curve of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(
		journalRunsCmd,
		journalRunCmd,
		journalTradesCmd,
		journalTradeCmd,
		journalDayCmd,
		journalEquityCmd,
	)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./portsim.sqlite", "path to SQLite journal DB")
}

func withJournal(fn func(j *journal.SQLite) error) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()
	return fn(j)
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	return withJournal(func(j *journal.SQLite) error {
		runs, err := j.ListRuns()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN ID\tCREATED\tSTRATEGY\tSYMBOL\tBARS\tTRADES\tRETURN\tMAX DD\tSHARPE")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f%%\t%.2f%%\t%.3f\n",
				r.RunID,
				r.Created.Format(time.DateTime),
				r.Strategy,
				r.Symbol,
				r.Bars,
				r.Trades,
				r.ReturnPct,
				r.MaxDDPct,
				r.Sharpe)
		}
		return tw.Flush()
	})
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	return withJournal(func(j *journal.SQLite) error {
		run, err := j.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		org, err := run.Org()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), org)
		return nil
	})
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	return withJournal(func(j *journal.SQLite) error {
		recs, err := j.ListTradesByRun(args[0])
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
		return nil
	})
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	return withJournal(func(j *journal.SQLite) error {
		rec, err := j.GetTrade(args[0])
		if err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
		return nil
	})
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	start, end, err := dayBounds(time.UTC, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return withJournal(func(j *journal.SQLite) error {
		recs, err := j.ListTradesClosedBetween(start, end)
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
		return nil
	})
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	return withJournal(func(j *journal.SQLite) error {
		snaps, err := j.ListEquityByRun(args[0])
		if err != nil {
			return fmt.Errorf("query equity: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "TIME\tCASH\tPOSITIONS\tEQUITY\t")
		for _, s := range snaps {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t\n", s.Time.Format(time.RFC3339), s.Cash, s.PositionValue, s.Equity)
		}
		return tw.Flush()
	})
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}
