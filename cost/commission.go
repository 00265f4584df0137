package cost

import "github.com/shopspring/decimal"

type NoCommission struct{}

func (NoCommission) Calculate(TradeIntent) decimal.Decimal { return decimal.Zero }

// FixedCommission charges a flat fee per fill.
type FixedCommission struct {
	Fee decimal.Decimal
}

func NewFixedCommission(fee float64) FixedCommission {
	return FixedCommission{Fee: decimal.NewFromFloat(fee)}
}

func (c FixedCommission) Calculate(TradeIntent) decimal.Decimal {
	if c.Fee.IsNegative() {
		return decimal.Zero
	}
	return c.Fee
}

// PercentCommission charges Rate times notional (0.001 = 10 bps).
type PercentCommission struct {
	Rate decimal.Decimal
}

func NewPercentCommission(rate float64) PercentCommission {
	return PercentCommission{Rate: decimal.NewFromFloat(rate)}
}

func (c PercentCommission) Calculate(t TradeIntent) decimal.Decimal {
	if c.Rate.IsNegative() || t.Quantity <= 0 {
		return decimal.Zero
	}
	return t.Notional().Abs().Mul(c.Rate)
}
