package journal

import (
	"time"

	"github.com/rustyeddy/portsim/ledger"
	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
)

// Trade is one round trip: opened by a buy fill, closed by the next sell
// fill on the same symbol.
type Trade struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol"`
	Side            market.Side     `json:"side"`
	Quantity        int64           `json:"quantity"`
	EntryTime       time.Time       `json:"entry_time"`
	EntryPrice      decimal.Decimal `json:"entry_price"`
	EntryCommission decimal.Decimal `json:"entry_commission"`
	EntrySlippage   decimal.Decimal `json:"entry_slippage"`

	Open           bool            `json:"open"`
	ExitTime       time.Time       `json:"exit_time,omitzero"`
	ExitPrice      decimal.Decimal `json:"exit_price"`
	ExitQuantity   int64           `json:"exit_quantity"`
	ExitCommission decimal.Decimal `json:"exit_commission"`
	ExitSlippage   decimal.Decimal `json:"exit_slippage"`
	PnL            decimal.Decimal `json:"pnl"`
}

// Record converts the trade into its persisted form.
func (t Trade) Record(runID string) TradeRecord {
	rec := TradeRecord{
		RunID:           runID,
		TradeID:         t.ID,
		Symbol:          t.Symbol,
		Side:            t.Side.String(),
		Quantity:        float64(t.Quantity),
		EntryPrice:      t.EntryPrice.InexactFloat64(),
		EntryCommission: t.EntryCommission.InexactFloat64(),
		OpenTime:        t.EntryTime,
		Status:          StatusOpen,
	}
	if !t.Open {
		rec.ExitPrice = t.ExitPrice.InexactFloat64()
		rec.ExitCommission = t.ExitCommission.InexactFloat64()
		rec.CloseTime = t.ExitTime
		rec.RealizedPL = t.PnL.InexactFloat64()
		rec.Status = StatusClosed
	}
	return rec
}

// Book keeps at most one open trade per symbol. A buy while a trade is
// open adds to the ledger position only; a sell closes the oldest open
// trade for the symbol whatever the quantities, so per-trade P&L can differ
// from per-lot P&L while aggregate equity is unaffected.
type Book struct {
	trades []Trade
	open   map[string][]int
}

func NewBook() *Book {
	return &Book{open: make(map[string][]int)}
}

// OnBuy opens a trade for a filled buy unless one is already open for the
// symbol. It reports whether a trade was opened.
func (b *Book) OnBuy(f ledger.Fill, id string) (Trade, bool) {
	if len(b.open[f.Symbol]) > 0 {
		return Trade{}, false
	}

	t := Trade{
		ID:              id,
		Symbol:          f.Symbol,
		Side:            market.SideBuy,
		Quantity:        f.Quantity,
		EntryTime:       f.Time,
		EntryPrice:      f.Price,
		EntryCommission: f.Commission,
		EntrySlippage:   f.Slippage,
		Open:            true,
	}
	b.trades = append(b.trades, t)
	b.open[f.Symbol] = append(b.open[f.Symbol], len(b.trades)-1)
	return t, true
}

// OnSell closes the earliest open trade for the fill's symbol with the
// realized P&L the ledger reported for the fill.
func (b *Book) OnSell(f ledger.Fill, pnl decimal.Decimal) (Trade, bool) {
	queue := b.open[f.Symbol]
	if len(queue) == 0 {
		return Trade{}, false
	}

	idx := queue[0]
	if len(queue) == 1 {
		delete(b.open, f.Symbol)
	} else {
		b.open[f.Symbol] = queue[1:]
	}

	t := &b.trades[idx]
	t.Open = false
	t.ExitTime = f.Time
	t.ExitPrice = f.Price
	t.ExitQuantity = f.Quantity
	t.ExitCommission = f.Commission
	t.ExitSlippage = f.Slippage
	t.PnL = pnl
	return *t, true
}

// Trades returns all trades in entry order.
func (b *Book) Trades() []Trade {
	return append([]Trade(nil), b.trades...)
}

func (b *Book) Closed() []Trade {
	var out []Trade
	for _, t := range b.trades {
		if !t.Open {
			out = append(out, t)
		}
	}
	return out
}

func (b *Book) Open() []Trade {
	var out []Trade
	for _, t := range b.trades {
		if t.Open {
			out = append(out, t)
		}
	}
	return out
}
