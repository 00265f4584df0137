package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/portsim/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func closed(pnl float64, days int) journal.Trade {
	return journal.Trade{
		EntryTime: t0,
		ExitTime:  t0.AddDate(0, 0, days),
		PnL:       decimal.NewFromFloat(pnl),
	}
}

func TestTradeStats(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		closed(100, 1),
		closed(-50, 3),
		closed(200, 2),
		closed(0, 2),
		{Open: true, PnL: decimal.NewFromInt(1000)},
	}

	s := TradeStats(trades)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 0.5, s.WinRate, 1e-12)
	assert.InDelta(t, 300, s.GrossProfit, 1e-9)
	assert.InDelta(t, 50, s.GrossLoss, 1e-9)
	assert.InDelta(t, 6, s.ProfitFactor.Float(), 1e-12)
	assert.InDelta(t, 250, s.NetPnL, 1e-9)
	assert.InDelta(t, 62.5, s.Expectancy, 1e-9)
	assert.InDelta(t, 150, s.AverageWin, 1e-9)
	assert.InDelta(t, -50, s.AverageLoss, 1e-9)
	assert.InDelta(t, 200, s.LargestWin, 1e-9)
	assert.InDelta(t, -50, s.LargestLoss, 1e-9)
	assert.Equal(t, 2*24*time.Hour, s.AverageHold)
}

func TestTradeStatsSentinels(t *testing.T) {
	t.Parallel()

	empty := TradeStats(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.ProfitFactor.Float())
	assert.Zero(t, empty.WinRate)

	onlyOpen := TradeStats([]journal.Trade{{Open: true}})
	assert.Equal(t, 1, onlyOpen.Open)
	assert.Zero(t, onlyOpen.Total)

	allWins := TradeStats([]journal.Trade{closed(10, 1), closed(5, 1)})
	assert.True(t, math.IsInf(allWins.ProfitFactor.Float(), 1))
	assert.Equal(t, 1.0, allWins.WinRate)

	allLosses := TradeStats([]journal.Trade{closed(-10, 1)})
	assert.Zero(t, allLosses.ProfitFactor.Float())
	assert.Zero(t, allLosses.WinRate)
}
