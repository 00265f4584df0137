package indicators

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/portsim/market"
)

var (
	ErrPeriod        = errors.New("period must be positive")
	ErrNotEnoughBars  = errors.New("not enough bars")
)

func checkPeriod(bars []market.Bar, period int) error {
	if period <= 0 {
		return fmt.Errorf("%w, got %d", ErrPeriod, period)
	}
	if len(bars) < period {
		return fmt.Errorf("%w: need %d, got %d", ErrNotEnoughBars, period, len(bars))
	}
	return nil
}

// MA is the Simple Moving Average of the last period closes.
func MA(bars []market.Bar, period int) (float64, error) {
	if err := checkPeriod(bars, period); err != nil {
		return 0, err
	}
	ma := NewMA(period)
	for _, b := range bars[len(bars)-period:] {
		ma.Add(b.Close)
	}
	return ma.Value(), nil
}

// EMA is the Exponential Moving Average over all bars, seeded with the SMA
// of the first period closes.
func EMA(bars []market.Bar, period int) (float64, error) {
	if err := checkPeriod(bars, period); err != nil {
		return 0, err
	}
	ema := NewEMA(period)
	for _, b := range bars {
		ema.Add(b.Close)
	}
	return ema.Value(), nil
}
