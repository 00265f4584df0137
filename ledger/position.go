package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a long holding in one symbol. AvgPrice is the volume-weighted
// entry price and is meaningless once Quantity reaches zero.
type Position struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	LastPrice     decimal.Decimal `json:"last_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
}

func (p *Position) add(qty int64, price decimal.Decimal) {
	oldQty := decimal.NewFromInt(p.Quantity)
	addQty := decimal.NewFromInt(qty)

	if p.Quantity == 0 {
		p.AvgPrice = price
	} else {
		p.AvgPrice = p.AvgPrice.Mul(oldQty).
			Add(price.Mul(addQty)).
			Div(oldQty.Add(addQty))
	}
	p.Quantity += qty
	p.mark(price)
}

func (p *Position) reduce(qty int64, price, commission decimal.Decimal) decimal.Decimal {
	pnl := price.Sub(p.AvgPrice).Mul(decimal.NewFromInt(qty)).Sub(commission)
	p.RealizedPnL = p.RealizedPnL.Add(pnl)
	p.Quantity -= qty
	if p.Quantity == 0 {
		p.AvgPrice = decimal.Zero
	}
	p.mark(price)
	return pnl
}

func (p *Position) mark(close decimal.Decimal) {
	qty := decimal.NewFromInt(p.Quantity)
	p.LastPrice = close
	p.MarketValue = close.Mul(qty)
	p.UnrealizedPnL = close.Sub(p.AvgPrice).Mul(qty)
}

// Snapshot is the per-bar portfolio record.
type Snapshot struct {
	Time      time.Time           `json:"time"`
	Cash      decimal.Decimal     `json:"cash"`
	Equity    decimal.Decimal     `json:"equity"`
	Positions map[string]Position `json:"positions"`
}
