package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	runsHeader   = []string{"run_id", "created", "strategy", "symbol", "dataset", "start", "end", "bars", "trades", "wins", "losses", "start_equity", "end_equity", "net_pl", "return_pct", "max_dd_pct", "sharpe", "sortino", "var95", "cvar95"}
	tradesHeader = []string{"run_id", "trade_id", "symbol", "side", "quantity", "entry_price", "exit_price", "entry_commission", "exit_commission", "open_time", "close_time", "realized_pl", "status"}
	equityHeader = []string{"run_id", "time", "cash", "equity", "position_value"}
)

// CSV writes runs.csv, trades.csv and equity.csv into a directory.
type CSV struct {
	runs   *csv.Writer
	trades *csv.Writer
	equity *csv.Writer
	files  []*os.File
}

func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	j := &CSV{}
	open := func(name string, header []string) (*csv.Writer, error) {
		fh, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, fh)

		w := csv.NewWriter(fh)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.runs, err = open("runs.csv", runsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.trades, err = open("trades.csv", tradesHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.equity, err = open("equity.csv", equityHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordRun(r Run) error {
	return j.write(j.runs, []string{
		r.RunID,
		stamp(r.Created),
		r.Strategy,
		r.Symbol,
		r.Dataset,
		stamp(r.Start),
		stamp(r.End),
		strconv.Itoa(r.Bars),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.StartEquity),
		f(r.EndEquity),
		f(r.NetPL),
		f(r.ReturnPct),
		f(r.MaxDDPct),
		f(r.Sharpe),
		f(r.Sortino),
		f(r.VaR95),
		f(r.CVaR95),
	})
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	return j.write(j.trades, []string{
		t.RunID,
		t.TradeID,
		t.Symbol,
		t.Side,
		f(t.Quantity),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.EntryCommission),
		f(t.ExitCommission),
		stamp(t.OpenTime),
		stamp(t.CloseTime),
		f(t.RealizedPL),
		t.Status,
	})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.RunID,
		stamp(e.Time),
		f(e.Cash),
		f(e.Equity),
		f(e.PositionValue),
	})
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return fmt.Errorf("csv journal: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	var errs []error
	for _, w := range []*csv.Writer{j.runs, j.trades, j.equity} {
		w.Flush()
		errs = append(errs, w.Error())
	}
	errs = append(errs, j.closeFiles())
	return errors.Join(errs...)
}

func (j *CSV) closeFiles() error {
	var errs []error
	for _, fh := range j.files {
		errs = append(errs, fh.Close())
	}
	j.files = nil
	return errors.Join(errs...)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// stamp formats t as RFC3339, leaving zero times empty.
func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
