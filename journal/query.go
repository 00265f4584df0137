package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

const runColumns = `run_id, created, strategy, symbol, dataset, config, fraction, commission, slippage,
	start_time, end_time, bars, trades, open_trades, wins, losses, rejected,
	start_equity, end_equity, net_pl, return_pct, win_rate, profit_factor,
	max_dd_pct, sharpe, sortino, var95, cvar95, notes`

const tradeColumns = `run_id, trade_id, symbol, side, quantity, entry_price, exit_price,
	entry_commission, exit_commission, open_time, close_time, realized_pl, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r      Run
		config string
		notes  string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Symbol, &r.Dataset, &config,
		&r.Fraction, &r.Commission, &r.Slippage,
		&r.Start, &r.End, &r.Bars, &r.Trades, &r.OpenTrades, &r.Wins, &r.Losses, &r.Rejected,
		&r.StartEquity, &r.EndEquity, &r.NetPL, &r.ReturnPct, &r.WinRate, &r.ProfitFactor,
		&r.MaxDDPct, &r.Sharpe, &r.Sortino, &r.VaR95, &r.CVaR95, &notes,
	)
	if err != nil {
		return Run{}, err
	}
	if config != "" {
		r.Config = []byte(config)
	}
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	r.ProfitFactor = fromFinite(r.ProfitFactor)
	r.Sortino = fromFinite(r.Sortino)
	return r, nil
}

func scanTrade(s scanner) (TradeRecord, error) {
	var (
		rec       TradeRecord
		closeTime sql.NullTime
	)
	err := s.Scan(
		&rec.RunID,
		&rec.TradeID,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryCommission,
		&rec.ExitCommission,
		&rec.OpenTime,
		&closeTime,
		&rec.RealizedPL,
		&rec.Status,
	)
	if err != nil {
		return TradeRecord{}, err
	}
	rec.CloseTime = nullTime(closeTime)
	return rec, nil
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns all runs, newest first.
func (j *SQLite) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created DESC, run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	rec, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TradeRecord{}, fmt.Errorf("trade %q %w", tradeID, ErrNotFound)
	}
	return rec, err
}

// ListTradesByRun returns a run's trades in entry order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	return j.listTrades(`SELECT `+tradeColumns+` FROM trades
		WHERE run_id = ?
		ORDER BY open_time ASC, trade_id ASC`, runID)
}

// ListTradesClosedBetween returns closed trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.listTrades(`SELECT `+tradeColumns+` FROM trades
		WHERE close_time IS NOT NULL AND close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) listTrades(query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, cash, equity, position_value
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Cash, &e.Equity, &e.PositionValue); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
