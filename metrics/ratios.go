package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sharpe is mean(excess)/std(excess)·√252 with excess = r - rf/252.
// It is 0 when std is 0 or there are fewer than two observations.
func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(excess(returns, riskFree), nil)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(TradingDays)
}

// Sortino divides mean excess return by the standard deviation of the
// negative excess returns only. With no downside observations it is +Inf
// when the mean is positive and 0 otherwise, so all-zero excess returns
// give 0. A single negative excess return has no sample deviation and
// also gives 0, as do identical negative ones.
func Sortino(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	ex := excess(returns, riskFree)
	mean := stat.Mean(ex, nil)

	var down []float64
	for _, r := range ex {
		if r < 0 {
			down = append(down, r)
		}
	}
	if len(down) == 0 {
		if mean > 0 {
			return math.Inf(1)
		}
		return 0
	}
	if len(down) < 2 {
		return 0
	}
	dd := stat.StdDev(down, nil)
	if dd == 0 {
		return 0
	}
	return mean / dd * math.Sqrt(TradingDays)
}

// Calmar is annualized return over max drawdown; 0 when drawdown is 0.
func Calmar(annualized, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualized / maxDrawdown
}

// InformationRatio is mean(active)/std(active)·√252 where active is the
// per-period difference between returns and benchmark.
func InformationRatio(returns, benchmark []float64) (float64, error) {
	if len(returns) != len(benchmark) {
		return 0, fmt.Errorf("information ratio: %w (%d returns, %d benchmark)",
			ErrLengthMismatch, len(returns), len(benchmark))
	}
	if len(returns) < 2 {
		return 0, nil
	}

	active := make([]float64, len(returns))
	for i := range returns {
		active[i] = returns[i] - benchmark[i]
	}
	mean, std := stat.MeanStdDev(active, nil)
	if std == 0 {
		return 0, nil
	}
	return mean / std * math.Sqrt(TradingDays), nil
}
