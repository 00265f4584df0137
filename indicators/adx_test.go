package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/portsim/market"
	"github.com/stretchr/testify/assert"
)

func trendBars(n int, step float64) []market.Bar {
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, n)
	for i := range out {
		c := 100 + step*float64(i)
		out[i] = market.Bar{Time: t0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return out
}

func TestADXWarmup(t *testing.T) {
	t.Parallel()

	adx := NewADX(5)
	assert.Equal(t, "ADX(5)", adx.Name())
	assert.Equal(t, 10, adx.Warmup())

	bars := trendBars(12, 1)
	for i, b := range bars[:9] {
		adx.Update(b)
		assert.False(t, adx.Ready(), "bar %d", i)
		assert.Zero(t, adx.Value())
	}
	adx.Update(bars[9])
	assert.True(t, adx.Ready())
}

func TestADXStrongTrend(t *testing.T) {
	t.Parallel()

	// every bar moves up by 1 with a range of 2: +DI 50, -DI 0, DX 100
	adx := NewADX(4)
	for _, b := range trendBars(30, 1) {
		adx.Update(b)
	}
	assert.InDelta(t, 100, adx.Value(), 1e-9)
	assert.InDelta(t, 50, adx.PlusDI(), 1e-9)
	assert.Zero(t, adx.MinusDI())

	down := NewADX(4)
	for _, b := range trendBars(30, -1) {
		down.Update(b)
	}
	assert.InDelta(t, 100, down.Value(), 1e-9)
	assert.InDelta(t, 50, down.MinusDI(), 1e-9)
}

func TestADXFlat(t *testing.T) {
	t.Parallel()

	adx := NewADX(3)
	for _, b := range barsFromCloses(10, 10, 10, 10, 10, 10, 10, 10) {
		adx.Update(b)
	}
	assert.True(t, adx.Ready())
	assert.Zero(t, adx.Value())
}

func TestADXReset(t *testing.T) {
	t.Parallel()

	adx := NewADX(2)
	for _, b := range trendBars(6, 1) {
		adx.Update(b)
	}
	assert.True(t, adx.Ready())

	adx.Reset()
	assert.False(t, adx.Ready())
	assert.Equal(t, 4, adx.Warmup())
}
