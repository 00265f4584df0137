package cost

import (
	"math"

	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
)

var bpsDivisor = decimal.NewFromInt(10_000)

type NoSlippage struct{}

func (NoSlippage) Calculate(market.Order, decimal.Decimal) decimal.Decimal { return decimal.Zero }

// FixedBpsSlippage moves the fill price Bps basis points against the order.
type FixedBpsSlippage struct {
	Bps decimal.Decimal
}

func NewFixedBpsSlippage(bps float64) FixedBpsSlippage {
	return FixedBpsSlippage{Bps: decimal.NewFromFloat(bps)}
}

func (s FixedBpsSlippage) Calculate(o market.Order, price decimal.Decimal) decimal.Decimal {
	return signed(o.Side, price.Mul(s.Bps).Div(bpsDivisor))
}

// SqrtImpactSlippage models market impact growing with the square root of
// order size: price * Coefficient * sqrt(quantity).
type SqrtImpactSlippage struct {
	Coefficient decimal.Decimal
}

func NewSqrtImpactSlippage(coefficient float64) SqrtImpactSlippage {
	return SqrtImpactSlippage{Coefficient: decimal.NewFromFloat(coefficient)}
}

func (s SqrtImpactSlippage) Calculate(o market.Order, price decimal.Decimal) decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	root := decimal.NewFromFloat(math.Sqrt(float64(o.Quantity)))
	return signed(o.Side, price.Mul(s.Coefficient).Mul(root))
}

// signed applies the side convention to a magnitude: buys pay up, sells
// receive less. Negative magnitudes are treated as zero.
func signed(side market.Side, magnitude decimal.Decimal) decimal.Decimal {
	if !magnitude.IsPositive() {
		return decimal.Zero
	}
	if side == market.SideSell {
		return magnitude.Neg()
	}
	return magnitude
}
