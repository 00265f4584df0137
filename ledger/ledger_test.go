package ledger

import (
	"testing"
	"time"

	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buy(qty int64, price, commission string) Fill {
	return Fill{Symbol: "SPY", Side: market.SideBuy, Quantity: qty, Price: d(price), Commission: d(commission), Time: t0}
}

func sell(qty int64, price, commission string) Fill {
	return Fill{Symbol: "SPY", Side: market.SideSell, Quantity: qty, Price: d(price), Commission: d(commission), Time: t0}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s, got %s", want, got)
}

func TestApplyBuy(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	res := l.Apply(buy(5, "100", "1"))
	require.Equal(t, Filled, res.Status)

	assertDec(t, "499", l.Cash())
	p, ok := l.Position("SPY")
	require.True(t, ok)
	assert.Equal(t, int64(5), p.Quantity)
	assertDec(t, "100", p.AvgPrice)
}

func TestApplyBuyAveragesEntryPrice(t *testing.T) {
	t.Parallel()

	l := New(d("10000"))
	require.True(t, l.ApplyBuy(buy(10, "100", "0")).Status.Filled())
	require.True(t, l.ApplyBuy(buy(30, "120", "0")).Status.Filled())

	p, _ := l.Position("SPY")
	assert.Equal(t, int64(40), p.Quantity)
	// (100*10 + 120*30) / 40 = 115
	assertDec(t, "115", p.AvgPrice)
	assertDec(t, "5400", l.Cash())
}

func TestApplyBuyRejectsInsufficientFunds(t *testing.T) {
	t.Parallel()

	l := New(d("100"))
	res := l.Apply(buy(1, "100", "0.01"))
	assert.Equal(t, RejectedInsufficientFunds, res.Status)
	assertDec(t, "100", l.Cash())
	assert.Empty(t, l.Positions())

	// Exactly affordable is accepted.
	res = l.Apply(buy(1, "99", "1"))
	assert.Equal(t, Filled, res.Status)
	assertDec(t, "0", l.Cash())
}

func TestApplySell(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	require.True(t, l.Apply(buy(10, "50", "0")).Status.Filled())

	res := l.Apply(sell(4, "60", "2"))
	require.Equal(t, Filled, res.Status)
	// (60-50)*4 - 2 = 38
	assertDec(t, "38", res.RealizedPnL)
	assertDec(t, "38", l.RealizedPnL())
	// 500 + 240 - 2
	assertDec(t, "738", l.Cash())

	p, ok := l.Position("SPY")
	require.True(t, ok)
	assert.Equal(t, int64(6), p.Quantity)
	assertDec(t, "50", p.AvgPrice)
}

func TestApplySellDeletesFlatPosition(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	require.True(t, l.Apply(buy(10, "50", "0")).Status.Filled())
	res := l.Apply(sell(10, "40", "0"))
	require.Equal(t, Filled, res.Status)
	assertDec(t, "-100", res.RealizedPnL)

	_, ok := l.Position("SPY")
	assert.False(t, ok)
	assert.Equal(t, int64(0), l.Held("SPY"))
	assertDec(t, "900", l.Cash())
	assertDec(t, "900", l.Equity())
}

func TestApplySellRejectsInsufficientPosition(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	assert.Equal(t, RejectedInsufficientPosition, l.Apply(sell(1, "10", "0")).Status)

	require.True(t, l.Apply(buy(2, "10", "0")).Status.Filled())
	assert.Equal(t, RejectedInsufficientPosition, l.Apply(sell(3, "10", "0")).Status)
	assert.Equal(t, int64(2), l.Held("SPY"))
	assertDec(t, "980", l.Cash())
}

func TestApplySellRejectsUnpayableCommission(t *testing.T) {
	t.Parallel()

	l := New(d("10"))
	require.Equal(t, Filled, l.Apply(buy(1, "5", "0")).Status)

	// proceeds 6 minus commission 20 would leave cash at -9
	res := l.Apply(sell(1, "6", "20"))
	assert.Equal(t, RejectedInsufficientFunds, res.Status)
	assertDec(t, "5", l.Cash())
	assert.Equal(t, int64(1), l.Held("SPY"))
}

func TestApplyRejectsInvalidFill(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	assert.Equal(t, RejectedInvalid, l.Apply(buy(0, "10", "0")).Status)
	assert.Equal(t, RejectedInvalid, l.Apply(buy(1, "0", "0")).Status)
	assert.Equal(t, RejectedInvalid, l.Apply(buy(1, "10", "-1")).Status)
	assert.Equal(t, RejectedInvalid, l.Apply(Fill{Symbol: "SPY", Quantity: 1, Price: d("1")}).Status)
	assertDec(t, "1000", l.Cash())
}

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	require.True(t, l.Apply(buy(10, "50", "0")).Status.Filled())

	l.MarkToMarket("SPY", d("55"))
	p, _ := l.Position("SPY")
	assertDec(t, "550", p.MarketValue)
	assertDec(t, "50", p.UnrealizedPnL)
	assertDec(t, "500", l.Cash())
	assertDec(t, "1050", l.Equity())
	assertDec(t, "0", l.RealizedPnL())

	// Unknown symbols are ignored.
	l.MarkToMarket("QQQ", d("1"))
	assert.Len(t, l.Positions(), 1)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	require.True(t, l.Apply(buy(10, "50", "0")).Status.Filled())
	l.MarkToMarket("SPY", d("52"))

	assert.NoError(t, l.Check(map[string]decimal.Decimal{"SPY": d("52")}))
	assert.ErrorIs(t, l.Check(map[string]decimal.Decimal{"SPY": d("53")}), ErrInvariant)
	assert.ErrorIs(t, l.Check(map[string]decimal.Decimal{}), ErrInvariant)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	l := New(d("1000"))
	require.True(t, l.Apply(buy(10, "50", "0")).Status.Filled())
	l.MarkToMarket("SPY", d("50"))

	snap := l.Snapshot(t0)
	assertDec(t, "1000", snap.Equity)
	assertDec(t, "500", snap.Cash)

	require.True(t, l.Apply(sell(10, "50", "0")).Status.Filled())
	assert.Equal(t, int64(10), snap.Positions["SPY"].Quantity)
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FILLED", Filled.String())
	assert.Equal(t, "REJECTED_INSUFFICIENT_FUNDS", RejectedInsufficientFunds.String())
	assert.Equal(t, "REJECTED_INSUFFICIENT_POSITION", RejectedInsufficientPosition.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}
