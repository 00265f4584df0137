package journal

import (
	"database/sql"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, strategy, symbol, dataset, config, fraction, commission, slippage,
		 start_time, end_time, bars, trades, open_trades, wins, losses, rejected,
		 start_equity, end_equity, net_pl, return_pct, win_rate, profit_factor,
		 max_dd_pct, sharpe, sortino, var95, cvar95, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Symbol, r.Dataset, string(r.Config),
		r.Fraction, r.Commission, r.Slippage,
		r.Start.UTC(), r.End.UTC(), r.Bars, r.Trades, r.OpenTrades, r.Wins, r.Losses, r.Rejected,
		r.StartEquity, r.EndEquity, r.NetPL, r.ReturnPct, r.WinRate, finite(r.ProfitFactor),
		r.MaxDDPct, r.Sharpe, finite(r.Sortino), r.VaR95, r.CVaR95, strings.Join(r.Notes, "\n"),
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	var closeTime sql.NullTime
	if !t.CloseTime.IsZero() {
		closeTime = sql.NullTime{Time: t.CloseTime.UTC(), Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(run_id, trade_id, symbol, side, quantity, entry_price, exit_price,
		 entry_commission, exit_commission, open_time, close_time, realized_pl, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Symbol, t.Side, t.Quantity, t.EntryPrice, t.ExitPrice,
		t.EntryCommission, t.ExitCommission, t.OpenTime.UTC(), closeTime, t.RealizedPL, t.Status,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, cash, equity, position_value)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time.UTC(), e.Cash, e.Equity, e.PositionValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// finite maps ±Inf to ±MaxFloat64; SQLite REAL columns cannot round-trip Inf.
func finite(x float64) float64 {
	switch {
	case math.IsInf(x, 1):
		return math.MaxFloat64
	case math.IsInf(x, -1):
		return -math.MaxFloat64
	}
	return x
}

func fromFinite(x float64) float64 {
	switch x {
	case math.MaxFloat64:
		return math.Inf(1)
	case -math.MaxFloat64:
		return math.Inf(-1)
	}
	return x
}

func nullTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}
