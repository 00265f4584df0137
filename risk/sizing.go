package risk

import (
	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
)

const DefaultFraction = 0.10

// Sizer turns a signal side into an order quantity given the account state
// at the bar being processed.
type Sizer interface {
	Size(side market.Side, cash, price decimal.Decimal, held int64) int64
}

// FixedFraction sizes every order as Fraction of current cash divided by
// price, floored to whole units. With ExitFull set a sell liquidates the
// whole held quantity instead.
type FixedFraction struct {
	Fraction float64
	ExitFull bool
}

func (s FixedFraction) Size(side market.Side, cash, price decimal.Decimal, held int64) int64 {
	if side == market.SideSell && s.ExitFull {
		return held
	}
	if s.Fraction <= 0 || !price.IsPositive() || !cash.IsPositive() {
		return 0
	}

	qty := cash.Mul(decimal.NewFromFloat(s.Fraction)).Div(price).Floor()
	return qty.IntPart()
}
