package backtest

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/portsim/journal"
	"github.com/rustyeddy/portsim/ledger"
	"github.com/rustyeddy/portsim/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FillEvent records every order the engine attempted, filled or not.
type FillEvent struct {
	ID  string `json:"id"`
	Bar int    `json:"bar"`
	ledger.Fill
	Status      ledger.Status   `json:"status"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// Result is the terminal artifact of a run. It is a plain value owned by
// the caller.
type Result struct {
	Strategy    string              `json:"strategy"`
	Symbol      string              `json:"symbol"` // key of the first bar, also the benchmark
	InitialCash decimal.Decimal     `json:"initial_cash"`
	FinalCash   decimal.Decimal     `json:"final_cash"`
	Start       time.Time           `json:"start"`
	End         time.Time           `json:"end"`
	Equity      []ledger.Snapshot   `json:"equity"`
	Trades      []journal.Trade     `json:"trades"`
	Fills       []FillEvent         `json:"fills"`
	Metrics     metrics.Performance `json:"metrics"`
}

// FinalEquity is the equity of the last snapshot, or the initial cash for
// an empty result.
func (r Result) FinalEquity() decimal.Decimal {
	if len(r.Equity) == 0 {
		return r.InitialCash
	}
	return r.Equity[len(r.Equity)-1].Equity
}

// Rejections returns the fill events the ledger turned down.
func (r Result) Rejections() []FillEvent {
	var out []FillEvent
	for _, f := range r.Fills {
		if !f.Status.Filled() {
			out = append(out, f)
		}
	}
	return out
}

// Log writes the metrics report as three grouped entries.
func (r Result) Log(log *zap.Logger) {
	m := r.Metrics
	log.Info("backtest report",
		zap.String("strategy", r.Strategy),
		zap.Time("start", r.Start),
		zap.Time("end", r.End),
		zap.Float64("initial_equity", m.StartEquity),
		zap.Float64("final_equity", m.EndEquity),
		zap.String("total_return", pct(m.TotalReturn)),
		zap.String("annualized_return", pct(m.AnnualizedReturn)),
		zap.String("max_drawdown", pct(m.MaxDrawdown.Value)),
		zap.Int("drawdown_bars", m.MaxDrawdown.Duration),
		zap.Float64("exposure", m.Exposure))

	log.Info("trade statistics",
		zap.Int("total_trades", m.Trades.Total),
		zap.Int("open_trades", m.Trades.Open),
		zap.Int("winning_trades", m.Trades.Wins),
		zap.Int("losing_trades", m.Trades.Losses),
		zap.String("win_rate", pct(m.Trades.WinRate)),
		zap.Float64("expectancy", m.Trades.Expectancy),
		zap.Stringer("profit_factor", m.Trades.ProfitFactor),
		zap.Float64("average_win", m.Trades.AverageWin),
		zap.Float64("average_loss", m.Trades.AverageLoss),
		zap.Duration("average_hold", m.Trades.AverageHold),
		zap.Int("fills", m.Fills),
		zap.Int("rejected_orders", m.RejectedOrders),
		zap.Float64("commission", m.TotalCommission),
		zap.Float64("slippage", m.TotalSlippage))

	log.Info("risk metrics",
		zap.Float64("sharpe_ratio", m.Sharpe),
		zap.Stringer("sortino_ratio", m.Sortino),
		zap.Float64("calmar_ratio", m.Calmar),
		zap.Float64("information_ratio", m.InformationRatio),
		zap.String("annualized_volatility", pct(m.Volatility)),
		zap.Float64("confidence", m.Confidence),
		zap.Float64("var_historical", m.VaRHistorical),
		zap.Float64("var_parametric", m.VaRParametric),
		zap.Float64("var_monte_carlo", m.VaRMonteCarlo),
		zap.Float64("cvar", m.CVaR))
}

// Print writes a human readable summary.
func (r Result) Print(w io.Writer) error {
	m := r.Metrics
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	rows := [][2]string{
		{"Strategy", r.Strategy},
		{"Period", fmt.Sprintf("%s .. %s (%d bars)", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly), m.Bars)},
		{"Equity", fmt.Sprintf("%s -> %s", r.InitialCash.StringFixed(2), r.FinalEquity().StringFixed(2))},
		{"Total return", pct(m.TotalReturn)},
		{"Annualized return", pct(m.AnnualizedReturn)},
		{"Volatility", pct(m.Volatility)},
		{"Max drawdown", fmt.Sprintf("%s (bars %d..%d)", pct(m.MaxDrawdown.Value), m.MaxDrawdown.PeakIndex, m.MaxDrawdown.TroughIndex)},
		{"Sharpe", fmt.Sprintf("%.3f", m.Sharpe)},
		{"Sortino", m.Sortino.String()},
		{"Calmar", fmt.Sprintf("%.3f", m.Calmar)},
		{"Information ratio", fmt.Sprintf("%.3f", m.InformationRatio)},
		{fmt.Sprintf("VaR %.0f%% hist/param/mc", m.Confidence*100), fmt.Sprintf("%.4f / %.4f / %.4f", m.VaRHistorical, m.VaRParametric, m.VaRMonteCarlo)},
		{"CVaR", fmt.Sprintf("%.4f", m.CVaR)},
		{"Trades", fmt.Sprintf("%d closed, %d open, %d won, %d lost", m.Trades.Total, m.Trades.Open, m.Trades.Wins, m.Trades.Losses)},
		{"Win rate", pct(m.Trades.WinRate)},
		{"Profit factor", m.Trades.ProfitFactor.String()},
		{"Fills", fmt.Sprintf("%d filled, %d rejected", m.Fills, m.RejectedOrders)},
		{"Costs", fmt.Sprintf("commission %.2f, slippage %.2f", m.TotalCommission, m.TotalSlippage)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}

	if len(m.Stress) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Scenario\tShock\tReturn\tP/L")
		for _, s := range m.Stress {
			fmt.Fprintf(tw, "%s\t%+.0fσ\t%s\t%.2f\n", s.Name, s.Shock, pct(s.Return), s.PnL)
		}
	}
	return tw.Flush()
}

// JournalRun fills the run summary persisted by the journal. Descriptive
// fields such as Dataset and Commission are left to the caller.
func (r Result) JournalRun(runID string) journal.Run {
	m := r.Metrics
	return journal.Run{
		RunID:        runID,
		Strategy:     r.Strategy,
		Symbol:       r.Symbol,
		Start:        r.Start,
		End:          r.End,
		Bars:         m.Bars,
		Trades:       m.Trades.Total,
		OpenTrades:   m.Trades.Open,
		Wins:         m.Trades.Wins,
		Losses:       m.Trades.Losses,
		Rejected:     m.RejectedOrders,
		StartEquity:  r.InitialCash.InexactFloat64(),
		EndEquity:    r.FinalEquity().InexactFloat64(),
		NetPL:        r.FinalEquity().Sub(r.InitialCash).InexactFloat64(),
		ReturnPct:    m.TotalReturn * 100,
		WinRate:      m.Trades.WinRate,
		ProfitFactor: m.Trades.ProfitFactor.Float(),
		MaxDDPct:     m.MaxDrawdown.Value * 100,
		Sharpe:       m.Sharpe,
		Sortino:      m.Sortino.Float(),
		VaR95:        m.VaRHistorical,
		CVaR95:       m.CVaR,
	}
}

func pct(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}
