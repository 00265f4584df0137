package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultSymbol keys bars that carry no symbol.
const DefaultSymbol = "DEFAULT"

var (
	ErrNoBars     = errors.New("no bars")
	ErrInvalidBar = errors.New("invalid bar")
	ErrUnsorted   = errors.New("bars not in ascending time order")
)

// Bar times are carried into millisecond ULIDs, which cannot go below zero.
var unixEpoch = time.Unix(0, 0)

// Bar is one OHLCV observation for a symbol. Bars are produced by loaders
// and consumed read-only by the engine.
type Bar struct {
	Symbol string    `json:"symbol,omitempty"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Key returns the symbol a bar trades under, falling back to DefaultSymbol
// when the bar carries none.
func (b Bar) Key() string {
	if b.Symbol == "" {
		return DefaultSymbol
	}
	return b.Symbol
}

// Validate checks a single bar for non-finite or non-positive prices, an
// inverted high/low range and a missing or pre-1970 timestamp.
func (b Bar) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close},
	} {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s %s is not finite", ErrInvalidBar, b.Time.Format(time.RFC3339), p.name)
		}
		if p.v <= 0 {
			return fmt.Errorf("%w: %s %s must be positive, got %v", ErrInvalidBar, b.Time.Format(time.RFC3339), p.name, p.v)
		}
	}
	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
		return fmt.Errorf("%w: %s volume %v", ErrInvalidBar, b.Time.Format(time.RFC3339), b.Volume)
	}
	if b.High < b.Low {
		return fmt.Errorf("%w: %s high %v below low %v", ErrInvalidBar, b.Time.Format(time.RFC3339), b.High, b.Low)
	}
	if b.Time.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidBar)
	}
	if b.Time.Before(unixEpoch) {
		return fmt.Errorf("%w: %s predates the unix epoch", ErrInvalidBar, b.Time.Format(time.RFC3339))
	}
	return nil
}

// ValidateBars checks the whole sequence before a run: it must be non-empty,
// every bar valid, and timestamps strictly ascending per symbol.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoBars
	}

	last := make(map[string]time.Time)
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		prev, seen := last[b.Key()]
		if seen && !b.Time.After(prev) {
			return fmt.Errorf("%w: bar %d (%s) at %s not after %s",
				ErrUnsorted, i, b.Key(), b.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		last[b.Key()] = b.Time
	}
	return nil
}

// Between returns the bars whose time falls in [from, to). Zero bounds are
// open.
func Between(bars []Bar, from, to time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if inRange(b.Time, from, to) {
			out = append(out, b)
		}
	}
	return out
}

// Closes extracts the close prices of bars for one symbol, in order.
func Closes(bars []Bar, symbol string) []float64 {
	out := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Key() == symbol {
			out = append(out, b.Close)
		}
	}
	return out
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
