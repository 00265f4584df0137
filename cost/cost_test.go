package cost

import (
	"testing"

	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCommissionModels(t *testing.T) {
	t.Parallel()

	intent := TradeIntent{Symbol: "SPY", Side: market.SideBuy, Quantity: 100, Price: d("50")}

	tests := []struct {
		name  string
		model Commission
		want  string
	}{
		{"none", NoCommission{}, "0"},
		{"fixed", NewFixedCommission(10), "10"},
		{"fixed negative clamps", FixedCommission{Fee: d("-1")}, "0"},
		{"percent", NewPercentCommission(0.001), "5"},
		{"percent negative clamps", PercentCommission{Rate: d("-0.01")}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.model.Calculate(intent)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSlippageSignConvention(t *testing.T) {
	t.Parallel()

	price := d("100")
	models := map[string]Slippage{
		"none": NoSlippage{},
		"bps":  NewFixedBpsSlippage(5),
		"sqrt": NewSqrtImpactSlippage(0.001),
		"bad":  FixedBpsSlippage{Bps: d("-5")},
	}

	for name, m := range models {
		for _, qty := range []int64{1, 100, 10_000} {
			buy := m.Calculate(market.Order{Side: market.SideBuy, Quantity: qty, Type: market.MarketOrder}, price)
			sell := m.Calculate(market.Order{Side: market.SideSell, Quantity: qty, Type: market.MarketOrder}, price)
			assert.False(t, buy.IsNegative(), "%s buy qty=%d", name, qty)
			assert.False(t, sell.IsPositive(), "%s sell qty=%d", name, qty)
			assert.True(t, buy.Equal(sell.Neg()), "%s should be symmetric", name)
		}
	}
}

func TestFixedBpsSlippage(t *testing.T) {
	t.Parallel()

	got := NewFixedBpsSlippage(10).Calculate(market.Order{Side: market.SideBuy, Quantity: 5}, d("200"))
	assert.True(t, got.Equal(d("0.2")), "got %s", got)
}

func TestSqrtImpactSlippage(t *testing.T) {
	t.Parallel()

	m := NewSqrtImpactSlippage(0.01)
	got := m.Calculate(market.Order{Side: market.SideSell, Quantity: 400}, d("10"))
	assert.True(t, got.Equal(d("-2")), "got %s", got)

	assert.True(t, m.Calculate(market.Order{Side: market.SideBuy}, d("10")).IsZero())
}

func TestParse(t *testing.T) {
	t.Parallel()

	c, err := ParseCommission("fixed:10")
	require.NoError(t, err)
	assert.Equal(t, NewFixedCommission(10), c)

	c, err = ParseCommission(" PCT:0.002 ")
	require.NoError(t, err)
	assert.IsType(t, PercentCommission{}, c)

	c, err = ParseCommission("")
	require.NoError(t, err)
	assert.Equal(t, NoCommission{}, c)

	_, err = ParseCommission("tiered:1")
	assert.Error(t, err)
	_, err = ParseCommission("fixed:-3")
	assert.Error(t, err)
	_, err = ParseCommission("fixed:abc")
	assert.Error(t, err)

	s, err := ParseSlippage("bps:5")
	require.NoError(t, err)
	assert.IsType(t, FixedBpsSlippage{}, s)

	s, err = ParseSlippage("sqrt:0.1")
	require.NoError(t, err)
	assert.IsType(t, SqrtImpactSlippage{}, s)

	s, err = ParseSlippage("none")
	require.NoError(t, err)
	assert.Equal(t, NoSlippage{}, s)

	_, err = ParseSlippage("random")
	assert.Error(t, err)
}
