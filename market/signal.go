package market

import "time"

// Signal is a strategy's directional output for one bar. The sign of Value
// carries the direction; zero means hold.
type Signal struct {
	Time     time.Time         `json:"time"`
	Value    float64           `json:"value"`
	Strength float64           `json:"strength,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// Buy returns a long signal for t.
func Buy(t time.Time) Signal { return Signal{Time: t, Value: 1} }

// Sell returns an exit signal for t.
func Sell(t time.Time) Signal { return Signal{Time: t, Value: -1} }

// Side maps the signal onto an order side. ok is false for a hold.
func (s Signal) Side() (side Side, ok bool) {
	switch {
	case s.Value > 0:
		return SideBuy, true
	case s.Value < 0:
		return SideSell, true
	default:
		return 0, false
	}
}
