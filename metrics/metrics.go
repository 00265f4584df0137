package metrics

import (
	"fmt"
	"math/rand"

	"github.com/rustyeddy/portsim/journal"
	"github.com/rustyeddy/portsim/ledger"
	"github.com/rustyeddy/portsim/risk"
)

type Options struct {
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	Confidence        float64 `json:"confidence" yaml:"confidence"`
	MonteCarloSamples int     `json:"monte_carlo_samples" yaml:"monte_carlo_samples"`
	Seed              int64   `json:"seed" yaml:"seed"`
}

func DefaultOptions() Options {
	return Options{
		Confidence:        risk.DefaultConfidence,
		MonteCarloSamples: risk.DefaultMonteCarloSamples,
		Seed:              1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Confidence <= 0 || o.Confidence >= 1 {
		o.Confidence = d.Confidence
	}
	if o.MonteCarloSamples <= 0 {
		o.MonteCarloSamples = d.MonteCarloSamples
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	return o
}

// Performance is the metrics record attached to a backtest result.
type Performance struct {
	Bars        int     `json:"bars"`
	StartEquity float64 `json:"start_equity"`
	EndEquity   float64 `json:"end_equity"`

	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	Sharpe           float64 `json:"sharpe"`
	// Sortino is +Inf when no excess return is negative and the mean is
	// positive. It is 0 for a flat curve (all excess returns zero), for
	// exactly one negative excess return and for identical negative ones.
	Sortino          Stat    `json:"sortino"`
	Calmar           float64 `json:"calmar"`
	InformationRatio float64 `json:"information_ratio"`

	MaxDrawdown Drawdown `json:"max_drawdown"`

	Confidence    float64             `json:"confidence"`
	VaRHistorical float64             `json:"var_historical"`
	VaRParametric float64             `json:"var_parametric"`
	VaRMonteCarlo float64             `json:"var_monte_carlo"`
	CVaR          float64             `json:"cvar"`
	Stress        []risk.StressResult `json:"stress"`
	Trades        TradeSummary        `json:"trades"`

	// Filled in by the engine.
	Fills           int     `json:"fills"`
	RejectedOrders  int     `json:"rejected_orders"`
	TotalCommission float64 `json:"total_commission"`
	TotalSlippage   float64 `json:"total_slippage"`
	Exposure        float64 `json:"exposure"`
}

// EquityCurve extracts equity values from snapshots.
func EquityCurve(snaps []ledger.Snapshot) []float64 {
	out := make([]float64, len(snaps))
	for i, s := range snaps {
		out[i] = s.Equity.InexactFloat64()
	}
	return out
}

// Compute assembles the performance record. benchmark holds per-period
// benchmark returns aligned with the equity returns; nil skips the
// information ratio.
func Compute(equity []ledger.Snapshot, trades []journal.Trade, benchmark []float64, opts Options) (Performance, error) {
	opts = opts.withDefaults()

	curve := EquityCurve(equity)
	returns := Returns(curve)

	p := Performance{
		Bars:       len(curve),
		Confidence: opts.Confidence,
		Trades:     TradeStats(trades),
	}
	if len(curve) > 0 {
		p.StartEquity = curve[0]
		p.EndEquity = curve[len(curve)-1]
	}

	p.TotalReturn = TotalReturn(curve)
	p.AnnualizedReturn = AnnualizedReturn(p.TotalReturn, len(returns))
	p.Volatility = Volatility(returns, true)
	p.Sharpe = Sharpe(returns, opts.RiskFreeRate)
	p.Sortino = Stat(Sortino(returns, opts.RiskFreeRate))
	p.MaxDrawdown = MaxDrawdown(curve)
	p.Calmar = Calmar(p.AnnualizedReturn, p.MaxDrawdown.Value)

	if benchmark != nil {
		ir, err := InformationRatio(returns, benchmark)
		if err != nil {
			return Performance{}, fmt.Errorf("compute metrics: %w", err)
		}
		p.InformationRatio = ir
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	p.VaRHistorical = risk.HistoricalVaR(returns, opts.Confidence)
	p.VaRParametric = risk.ParametricVaR(returns, opts.Confidence)
	p.VaRMonteCarlo = risk.MonteCarloVaR(returns, opts.Confidence, opts.MonteCarloSamples, rng)
	p.CVaR = risk.CVaR(returns, opts.Confidence)
	p.Stress = risk.Stress(returns, p.EndEquity, risk.DefaultScenarios())

	return p, nil
}
