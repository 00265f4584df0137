package indicators

import (
	"fmt"

	"github.com/rustyeddy/portsim/market"
)

// SimpleMA is a streaming Simple Moving Average over closes.
type SimpleMA struct {
	period int
	closes *window
}

func NewMA(period int) *SimpleMA {
	return &SimpleMA{period: period, closes: newWindow(period)}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("MA(%d)", m.period) }

func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() { m.closes.reset() }

func (m *SimpleMA) Update(b market.Bar) { m.Add(b.Close) }

// Add consumes a bare close.
func (m *SimpleMA) Add(price float64) { m.closes.push(price) }

func (m *SimpleMA) Ready() bool { return m.closes.full() }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.closes.mean()
}

// ExponentialMA is a streaming Exponential Moving Average. Its first value
// is the simple mean of the first period closes, kept in seed until then.
type ExponentialMA struct {
	period     int
	multiplier float64
	seed       *window
	ema        float64
	ready      bool
}

func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
		seed:       newWindow(period),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *ExponentialMA) Warmup() int { return e.period }

func (e *ExponentialMA) Reset() {
	e.seed.reset()
	e.ema, e.ready = 0, false
}

func (e *ExponentialMA) Update(b market.Bar) { e.Add(b.Close) }

// Add consumes a bare close.
func (e *ExponentialMA) Add(price float64) {
	if e.ready {
		e.ema += (price - e.ema) * e.multiplier
		return
	}
	e.seed.push(price)
	if e.seed.full() {
		e.ema, e.ready = e.seed.mean(), true
	}
}

func (e *ExponentialMA) Ready() bool { return e.ready }

func (e *ExponentialMA) Value() float64 {
	if !e.ready {
		return 0
	}
	return e.ema
}

var (
	_ Indicator = (*SimpleMA)(nil)
	_ Indicator = (*ExponentialMA)(nil)
)
