package risk

import (
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultConfidence        = 0.95
	DefaultMonteCarloSamples = 10000
)

// HistoricalVaR is the (1-confidence) quantile of the empirical return
// distribution. Losses are negative returns, so the result is usually < 0.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	return Quantile(returns, 1-confidence)
}

// ParametricVaR assumes normal returns: mean + z(1-confidence)*std.
// Fewer than two observations yield 0.
func ParametricVaR(returns []float64, confidence float64) float64 {
	mean, std, ok := meanStd(returns)
	if !ok {
		return 0
	}
	return mean + distuv.UnitNormal.Quantile(1-confidence)*std
}

// MonteCarloVaR draws n normal variates with the sample mean and std of
// returns and applies HistoricalVaR to the simulated sample. rng makes the
// result reproducible; n <= 0 uses DefaultMonteCarloSamples.
func MonteCarloVaR(returns []float64, confidence float64, n int, rng *rand.Rand) float64 {
	mean, std, ok := meanStd(returns)
	if !ok {
		return 0
	}
	if n <= 0 {
		n = DefaultMonteCarloSamples
	}

	sim := make([]float64, 0, n)
	for len(sim) < n {
		z0, z1 := boxMuller(rng)
		sim = append(sim, mean+z0*std)
		if len(sim) < n {
			sim = append(sim, mean+z1*std)
		}
	}
	return HistoricalVaR(sim, confidence)
}

// boxMuller returns two independent standard normal variates.
func boxMuller(rng *rand.Rand) (float64, float64) {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}

// CVaR is the mean of all returns at or below the historical VaR, so it is
// never above VaR. The two are equal only when every return at or below the
// interpolated quantile sits exactly on it, as with a single return; for
// {-0.05, -0.02, 0.01, 0.03, 0.04} at 95% VaR is -0.044 and CVaR is -0.05.
// Empty input yields 0.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := slices.Clone(returns)
	slices.Sort(sorted)
	threshold := quantileSorted(sorted, 1-confidence)

	var sum float64
	var n int
	for _, r := range sorted {
		if r > threshold {
			break
		}
		sum += r
		n++
	}
	if n == 0 {
		return threshold
	}
	return sum / float64(n)
}
