// Package cost holds the commission and slippage models applied to every
// simulated fill. Models are pure values and may be shared between runs.
package cost

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
)

// TradeIntent is what a commission model prices: a prospective fill at a
// known (post-slippage) price.
type TradeIntent struct {
	Symbol   string
	Side     market.Side
	Quantity int64
	Price    decimal.Decimal
}

// Notional is quantity times price.
func (t TradeIntent) Notional() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

type Commission interface {
	Calculate(TradeIntent) decimal.Decimal
}

// Slippage returns a signed price adjustment: positive for buys, negative
// for sells.
type Slippage interface {
	Calculate(order market.Order, price decimal.Decimal) decimal.Decimal
}

// ParseCommission builds a commission model from "none", "fixed:<fee>" or
// "pct:<rate>".
func ParseCommission(spec string) (Commission, error) {
	kind, v, err := split(spec)
	if err != nil {
		return nil, fmt.Errorf("commission: %w", err)
	}
	switch kind {
	case "", "none", "zero":
		return NoCommission{}, nil
	case "fixed":
		return FixedCommission{Fee: v}, nil
	case "pct", "percent":
		return PercentCommission{Rate: v}, nil
	default:
		return nil, fmt.Errorf("commission: unknown model %q (supported: none, fixed, pct)", kind)
	}
}

// ParseSlippage builds a slippage model from "none", "bps:<bps>" or
// "sqrt:<coefficient>".
func ParseSlippage(spec string) (Slippage, error) {
	kind, v, err := split(spec)
	if err != nil {
		return nil, fmt.Errorf("slippage: %w", err)
	}
	switch kind {
	case "", "none", "zero":
		return NoSlippage{}, nil
	case "bps", "fixed":
		return FixedBpsSlippage{Bps: v}, nil
	case "sqrt", "impact":
		return SqrtImpactSlippage{Coefficient: v}, nil
	default:
		return nil, fmt.Errorf("slippage: unknown model %q (supported: none, bps, sqrt)", kind)
	}
}

func split(spec string) (string, decimal.Decimal, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	kind, arg, found := strings.Cut(spec, ":")
	if !found {
		return kind, decimal.Zero, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("bad value %q: %w", arg, err)
	}
	if f < 0 {
		return "", decimal.Zero, fmt.Errorf("value must not be negative, got %v", f)
	}
	return kind, decimal.NewFromFloat(f), nil
}
