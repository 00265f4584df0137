package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/portsim/market"
	"github.com/stretchr/testify/assert"
)

func barsFromCloses(closes ...float64) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{
			Time:  base.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return out
}

func testBars() []market.Bar {
	return barsFromCloses(102, 105, 106, 108, 110, 111, 113, 114, 116, 118)
}

func TestMA(t *testing.T) {
	t.Parallel()

	ma, err := MA(testBars(), 5)
	assert.NoError(t, err)
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)
}

func TestEMA(t *testing.T) {
	t.Parallel()

	ema, err := EMA(barsFromCloses(2, 4, 6, 8), 2)
	assert.NoError(t, err)
	// seed 3, then (6-3)*2/3+3 = 5, then (8-5)*2/3+5 = 7
	assert.InDelta(t, 7.0, ema, 1e-12)
}

func TestMovingAverageErrors(t *testing.T) {
	t.Parallel()

	_, err := MA(testBars(), 0)
	assert.ErrorIs(t, err, ErrPeriod)
	_, err = MA(testBars()[:2], 5)
	assert.ErrorIs(t, err, ErrNotEnoughBars)
	_, err = EMA(testBars(), -1)
	assert.ErrorIs(t, err, ErrPeriod)
	_, err = EMA(nil, 3)
	assert.ErrorIs(t, err, ErrNotEnoughBars)
}
