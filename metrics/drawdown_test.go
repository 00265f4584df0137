package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		equity []float64
		want   Drawdown
	}{
		{
			name:   "empty",
			equity: nil,
			want:   Drawdown{RecoveryIndex: -1},
		},
		{
			name:   "monotonic",
			equity: []float64{100, 101, 102, 103},
			want:   Drawdown{RecoveryIndex: -1},
		},
		{
			name:   "recovers",
			equity: []float64{100, 120, 90, 100, 125, 110},
			want:   Drawdown{Value: 0.25, PeakIndex: 1, TroughIndex: 2, Duration: 1, RecoveryIndex: 4},
		},
		{
			name:   "never recovers",
			equity: []float64{100, 80, 90, 60, 70},
			want:   Drawdown{Value: 0.4, PeakIndex: 0, TroughIndex: 3, Duration: 3, RecoveryIndex: -1},
		},
		{
			name:   "deeper later drawdown replaces recovered one",
			equity: []float64{100, 90, 100, 200, 100},
			want:   Drawdown{Value: 0.5, PeakIndex: 3, TroughIndex: 4, Duration: 1, RecoveryIndex: -1},
		},
		{
			name:   "recovery at exact peak",
			equity: []float64{100, 50, 100},
			want:   Drawdown{Value: 0.5, PeakIndex: 0, TroughIndex: 1, Duration: 1, RecoveryIndex: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MaxDrawdown(tt.equity)
			assert.InDelta(t, tt.want.Value, got.Value, 1e-12)
			got.Value = tt.want.Value
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaxDrawdownBounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	for range 100 {
		equity := make([]float64, 1+rng.Intn(200))
		v := 1000.0
		for i := range equity {
			v *= 1 + rng.NormFloat64()*0.03
			if v < 0 {
				v = 0
			}
			equity[i] = v
		}

		dd := MaxDrawdown(equity)
		assert.GreaterOrEqual(t, dd.Value, 0.0)
		assert.LessOrEqual(t, dd.Value, 1.0)
		assert.GreaterOrEqual(t, dd.TroughIndex, dd.PeakIndex)
		assert.Equal(t, dd.TroughIndex-dd.PeakIndex, dd.Duration)
		if dd.RecoveryIndex >= 0 {
			assert.Greater(t, dd.RecoveryIndex, dd.TroughIndex)
		}
	}
}
