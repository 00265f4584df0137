package metrics

// Drawdown describes the deepest peak-to-trough decline of an equity curve.
// Value is a fraction in [0, 1]. RecoveryIndex is the first index after the
// trough where equity regains the peak, or -1 if it never does.
type Drawdown struct {
	Value         float64 `json:"value"`
	PeakIndex     int     `json:"peak_index"`
	TroughIndex   int     `json:"trough_index"`
	Duration      int     `json:"duration"`
	RecoveryIndex int     `json:"recovery_index"`
}

// MaxDrawdown scans the curve once, left to right.
func MaxDrawdown(equity []float64) Drawdown {
	dd := Drawdown{RecoveryIndex: -1}
	if len(equity) == 0 {
		return dd
	}

	peak, peakIdx := equity[0], 0
	recovered := false
	for i, e := range equity {
		if e > peak {
			peak, peakIdx = e, i
		}
		if dd.Value > 0 && !recovered && e >= equity[dd.PeakIndex] {
			dd.RecoveryIndex = i
			recovered = true
		}
		if peak <= 0 {
			continue
		}

		d := (peak - e) / peak
		if d > dd.Value {
			dd.Value = d
			dd.PeakIndex = peakIdx
			dd.TroughIndex = i
			dd.Duration = i - peakIdx
			dd.RecoveryIndex = -1
			recovered = false
		}
	}
	return dd
}
