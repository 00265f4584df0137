// Package metrics computes risk and performance statistics over an equity
// curve and a trade list. Every function is pure; degenerate input yields a
// documented sentinel instead of an error.
package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is the annualization convention.
const TradingDays = 252

var ErrLengthMismatch = errors.New("series length mismatch")

// Returns converts an equity curve into simple returns
// r_t = (e_t - e_{t-1}) / e_{t-1}. A non-positive previous value yields 0.
func Returns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev <= 0 {
			continue
		}
		out[i-1] = (equity[i] - prev) / prev
	}
	return out
}

// TotalReturn is e_last/e_first - 1, or 0 for fewer than two points.
func TotalReturn(equity []float64) float64 {
	if len(equity) < 2 || equity[0] <= 0 {
		return 0
	}
	return equity[len(equity)-1]/equity[0] - 1
}

// AnnualizedReturn compounds total over n return observations:
// (1+total)^(252/n) - 1.
func AnnualizedReturn(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if total <= -1 {
		return -1
	}
	return math.Pow(1+total, float64(TradingDays)/float64(n)) - 1
}

// Volatility is the sample standard deviation of returns, times √252 when
// annualize is set. Fewer than two observations yield 0.
func Volatility(returns []float64, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}
	v := stat.StdDev(returns, nil)
	if annualize {
		v *= math.Sqrt(TradingDays)
	}
	return v
}

func excess(returns []float64, riskFree float64) []float64 {
	daily := riskFree / TradingDays
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - daily
	}
	return out
}
