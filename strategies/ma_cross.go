package strategies

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rustyeddy/portsim/indicators"
	"github.com/rustyeddy/portsim/market"
)

const (
	KindSMA = "sma"
	KindEMA = "ema"

	DefaultFast = 10
	DefaultSlow = 30

	DefaultADXPeriod    = 14
	DefaultADXThreshold = 20.0
)

// MACross buys when the fast average crosses above the slow one and sells
// on the opposite cross. It owns the bar history it has seen; Init seeds
// that history so the averages are warm before the first replayed bar.
type MACross struct {
	Fast int
	Slow int
	Kind string

	history []market.Bar
	fast    indicators.Indicator
	slow    indicators.Indicator

	// optional trend filter: crosses are ignored while ADX is below adxMin
	adx    *indicators.ADX
	adxMin float64

	lastDiff     float64
	haveLastDiff bool
}

func NewMACross(fast, slow int, kind string) (*MACross, error) {
	if fast <= 0 {
		fast = DefaultFast
	}
	if slow <= 0 {
		slow = DefaultSlow
	}
	if fast >= slow {
		return nil, fmt.Errorf("ma cross: fast period %d must be below slow period %d", fast, slow)
	}
	if kind == "" {
		kind = KindSMA
	}

	s := &MACross{Fast: fast, Slow: slow, Kind: kind}
	switch kind {
	case KindSMA:
		s.fast, s.slow = indicators.NewMA(fast), indicators.NewMA(slow)
	case KindEMA:
		s.fast, s.slow = indicators.NewEMA(fast), indicators.NewEMA(slow)
	default:
		return nil, fmt.Errorf("ma cross: unknown kind %q", kind)
	}
	return s, nil
}

// FilterADX suppresses crosses unless ADX(period) is ready and at least
// threshold. Zero arguments take the defaults.
func (s *MACross) FilterADX(period int, threshold float64) *MACross {
	if period <= 0 {
		period = DefaultADXPeriod
	}
	if threshold <= 0 {
		threshold = DefaultADXThreshold
	}
	s.adx, s.adxMin = indicators.NewADX(period), threshold
	return s
}

func (s *MACross) Name() string {
	name := fmt.Sprintf("%s-cross(%d,%d)", s.Kind, s.Fast, s.Slow)
	if s.adx != nil {
		name += fmt.Sprintf("+%s>%g", strings.ToLower(s.adx.Name()), s.adxMin)
	}
	return name
}

// Init replaces the history with a copy of bars and warms the averages.
func (s *MACross) Init(bars []market.Bar) {
	s.history = slices.Clone(bars)
	s.fast.Reset()
	s.slow.Reset()
	if s.adx != nil {
		s.adx.Reset()
	}
	s.haveLastDiff = false
	for _, b := range s.history {
		s.update(b)
	}
}

// History returns a copy of the bars seen so far.
func (s *MACross) History() []market.Bar {
	return slices.Clone(s.history)
}

func (s *MACross) Next(b market.Bar) (market.Signal, bool) {
	s.history = append(s.history, b)

	prev, hadPrev := s.lastDiff, s.haveLastDiff
	if !s.update(b) || !hadPrev {
		return market.Signal{}, false
	}

	diff := s.lastDiff
	if !s.trending() {
		return market.Signal{}, false
	}
	switch {
	case prev <= 0 && diff > 0:
		return s.signal(market.Buy(b.Time), diff), true
	case prev >= 0 && diff < 0:
		return s.signal(market.Sell(b.Time), diff), true
	}
	return market.Signal{}, false
}

// update feeds b to both averages and reports whether both are warm.
func (s *MACross) update(b market.Bar) bool {
	s.fast.Update(b)
	s.slow.Update(b)
	if s.adx != nil {
		s.adx.Update(b)
	}
	if !s.fast.Ready() || !s.slow.Ready() {
		return false
	}
	s.lastDiff = s.fast.Value() - s.slow.Value()
	s.haveLastDiff = true
	return true
}

func (s *MACross) trending() bool {
	return s.adx == nil || (s.adx.Ready() && s.adx.Value() >= s.adxMin)
}

func (s *MACross) signal(sig market.Signal, diff float64) market.Signal {
	sig.Strength = math.Abs(diff)
	sig.Meta = map[string]string{
		"fast": s.fast.Name(),
		"slow": s.slow.Name(),
	}
	if s.adx != nil {
		sig.Meta["adx"] = fmt.Sprintf("%.2f", s.adx.Value())
	}
	return sig
}
