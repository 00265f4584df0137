package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/portsim/market"
)

// ADX is Wilder's Average Directional Index over bar highs, lows and
// closes. It reads 0..100 and measures trend strength, not direction.
//
// The first N bar-to-bar periods seed the smoothed true range and
// directional movement and yield the first DX; the ADX is seeded with the
// mean of the first N DX values, so it is ready after 2N bars.
type ADX struct {
	n int

	prev    market.Bar
	hasPrev bool
	periods int
	ready   bool

	smTR      float64
	smPlusDM  float64
	smMinusDM float64

	plusDI  float64
	minusDI float64
	dx      float64
	dxSum   float64
	adx     float64
}

func NewADX(period int) *ADX {
	return &ADX{n: period}
}

func (a *ADX) Name() string { return fmt.Sprintf("ADX(%d)", a.n) }
func (a *ADX) Warmup() int  { return 2 * a.n }
func (a *ADX) Ready() bool  { return a.ready }

func (a *ADX) Reset() {
	*a = ADX{n: a.n}
}

func (a *ADX) Value() float64 {
	if !a.ready {
		return 0
	}
	return a.adx
}

// PlusDI and MinusDI are the directional indicators behind the last DX.
func (a *ADX) PlusDI() float64  { return a.plusDI }
func (a *ADX) MinusDI() float64 { return a.minusDI }

func (a *ADX) Update(b market.Bar) {
	if a.n <= 0 {
		return
	}
	if !a.hasPrev {
		a.prev, a.hasPrev = b, true
		return
	}

	tr := math.Max(b.High-b.Low, math.Max(math.Abs(b.High-a.prev.Close), math.Abs(b.Low-a.prev.Close)))
	up := b.High - a.prev.High
	down := a.prev.Low - b.Low

	var plusDM, minusDM float64
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	a.prev = b
	a.periods++

	nf := float64(a.n)
	if a.periods <= a.n {
		a.smTR += tr
		a.smPlusDM += plusDM
		a.smMinusDM += minusDM
		if a.periods < a.n {
			return
		}
	} else {
		// Wilder smoothing
		a.smTR = a.smTR - a.smTR/nf + tr
		a.smPlusDM = a.smPlusDM - a.smPlusDM/nf + plusDM
		a.smMinusDM = a.smMinusDM - a.smMinusDM/nf + minusDM
	}

	a.plusDI, a.minusDI = directional(a.smPlusDM, a.smMinusDM, a.smTR)
	a.dx = dx(a.plusDI, a.minusDI)

	switch {
	case a.ready:
		a.adx = (a.adx*(nf-1) + a.dx) / nf
	case a.periods < 2*a.n-1:
		a.dxSum += a.dx
	default:
		a.adx = (a.dxSum + a.dx) / nf
		a.ready = true
	}
}

func directional(plusDM, minusDM, tr float64) (plus, minus float64) {
	if tr <= 0 {
		return 0, 0
	}
	return 100 * plusDM / tr, 100 * minusDM / tr
}

func dx(plus, minus float64) float64 {
	den := plus + minus
	if den <= 0 {
		return 0
	}
	return 100 * math.Abs(plus-minus) / den
}

var _ Indicator = (*ADX)(nil)
