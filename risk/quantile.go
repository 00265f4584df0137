package risk

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile of xs using linear interpolation between
// order statistics: h = (n-1)p, x[floor(h)] + (h-floor(h))(x[floor(h)+1]-x[floor(h)]).
// It returns 0 for empty input. xs is not modified.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// meanStd returns the mean and sample standard deviation. ok is false with
// fewer than two observations.
func meanStd(xs []float64) (mean, std float64, ok bool) {
	if len(xs) < 2 {
		return 0, 0, false
	}
	mean, std = stat.MeanStdDev(xs, nil)
	return mean, std, true
}
