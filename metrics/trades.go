package metrics

import (
	"math"
	"time"

	"github.com/rustyeddy/portsim/journal"
)

// TradeSummary aggregates closed trades. Open trades are counted in Open
// and excluded from everything else.
type TradeSummary struct {
	Total        int           `json:"total"`
	Open         int           `json:"open"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	WinRate      float64       `json:"win_rate"`
	ProfitFactor Stat          `json:"profit_factor"`
	Expectancy   float64       `json:"expectancy"`
	AverageWin   float64       `json:"average_win"`
	AverageLoss  float64       `json:"average_loss"`
	GrossProfit  float64       `json:"gross_profit"`
	GrossLoss    float64       `json:"gross_loss"`
	NetPnL       float64       `json:"net_pnl"`
	LargestWin   float64       `json:"largest_win"`
	LargestLoss  float64       `json:"largest_loss"`
	AverageHold  time.Duration `json:"average_hold"`
}

// TradeStats summarizes realized P&L. ProfitFactor is gross profit over
// gross loss: +Inf with profits and no losses, 0 with no closed trades or
// no profits.
func TradeStats(trades []journal.Trade) TradeSummary {
	var (
		s    TradeSummary
		hold time.Duration
	)
	for _, t := range trades {
		if t.Open {
			s.Open++
			continue
		}

		pnl := t.PnL.InexactFloat64()
		s.Total++
		s.NetPnL += pnl
		hold += t.ExitTime.Sub(t.EntryTime)

		switch {
		case pnl > 0:
			s.Wins++
			s.GrossProfit += pnl
			s.LargestWin = math.Max(s.LargestWin, pnl)
		case pnl < 0:
			s.Losses++
			s.GrossLoss += -pnl
			s.LargestLoss = math.Min(s.LargestLoss, pnl)
		}
	}

	if s.Total == 0 {
		return s
	}

	s.WinRate = float64(s.Wins) / float64(s.Total)
	s.Expectancy = s.NetPnL / float64(s.Total)
	s.AverageHold = hold / time.Duration(s.Total)
	if s.Wins > 0 {
		s.AverageWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AverageLoss = -s.GrossLoss / float64(s.Losses)
	}

	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = Stat(s.GrossProfit / s.GrossLoss)
	case s.GrossProfit > 0:
		s.ProfitFactor = Stat(math.Inf(1))
	}
	return s
}
