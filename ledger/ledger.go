// Package ledger owns cash and per-symbol long positions for one simulation
// run and enforces the accounting invariants on every fill.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/portsim/market"
	"github.com/shopspring/decimal"
)

var ErrInvariant = errors.New("ledger invariant violated")

// Status tags the outcome of applying a fill. Rejections are policy
// outcomes, not errors.
type Status int

const (
	Filled Status = iota
	RejectedInsufficientFunds
	RejectedInsufficientPosition
	RejectedInvalid
)

func (s Status) String() string {
	switch s {
	case Filled:
		return "FILLED"
	case RejectedInsufficientFunds:
		return "REJECTED_INSUFFICIENT_FUNDS"
	case RejectedInsufficientPosition:
		return "REJECTED_INSUFFICIENT_POSITION"
	case RejectedInvalid:
		return "REJECTED_INVALID"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s Status) Filled() bool { return s == Filled }

// Fill is the realized execution of one market order. Price already
// includes slippage.
type Fill struct {
	Symbol     string          `json:"symbol"`
	Side       market.Side     `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
	Slippage   decimal.Decimal `json:"slippage"`
	Time       time.Time       `json:"time"`
}

func (f Fill) notional() decimal.Decimal {
	return f.Price.Mul(decimal.NewFromInt(f.Quantity))
}

type FillResult struct {
	Status      Status
	RealizedPnL decimal.Decimal
}

type Ledger struct {
	cash        decimal.Decimal
	positions   map[string]*Position
	realizedPnL decimal.Decimal
}

func New(initialCash decimal.Decimal) *Ledger {
	return &Ledger{
		cash:      initialCash,
		positions: make(map[string]*Position),
	}
}

func (l *Ledger) Cash() decimal.Decimal        { return l.cash }
func (l *Ledger) RealizedPnL() decimal.Decimal { return l.realizedPnL }

// Held returns the quantity held for symbol, zero when flat.
func (l *Ledger) Held(symbol string) int64 {
	if p, ok := l.positions[symbol]; ok {
		return p.Quantity
	}
	return 0
}

// Position returns a copy of the position for symbol.
func (l *Ledger) Position(symbol string) (Position, bool) {
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of all held positions sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Equity is cash plus the marked value of every position.
func (l *Ledger) Equity() decimal.Decimal {
	eq := l.cash
	for _, p := range l.positions {
		eq = eq.Add(p.MarketValue)
	}
	return eq
}

func (l *Ledger) Apply(f Fill) FillResult {
	switch f.Side {
	case market.SideBuy:
		return l.ApplyBuy(f)
	case market.SideSell:
		return l.ApplySell(f)
	default:
		return FillResult{Status: RejectedInvalid}
	}
}

// ApplyBuy debits cash and grows the position. The fill is rejected without
// touching state when qty*price + commission exceeds cash.
func (l *Ledger) ApplyBuy(f Fill) FillResult {
	if !valid(f) {
		return FillResult{Status: RejectedInvalid}
	}

	cost := f.notional().Add(f.Commission)
	if cost.GreaterThan(l.cash) {
		return FillResult{Status: RejectedInsufficientFunds}
	}
	l.cash = l.cash.Sub(cost)

	p, ok := l.positions[f.Symbol]
	if !ok {
		p = &Position{Symbol: f.Symbol}
		l.positions[f.Symbol] = p
	}
	p.add(f.Quantity, f.Price)

	return FillResult{Status: Filled}
}

// ApplySell credits cash and shrinks the position, realizing P&L against
// the average entry price. Selling more than is held is rejected, as is a
// sell whose commission would drive cash negative.
func (l *Ledger) ApplySell(f Fill) FillResult {
	if !valid(f) {
		return FillResult{Status: RejectedInvalid}
	}

	p, ok := l.positions[f.Symbol]
	if !ok || f.Quantity > p.Quantity {
		return FillResult{Status: RejectedInsufficientPosition}
	}

	// a commission larger than the proceeds must still be payable
	cash := l.cash.Add(f.notional()).Sub(f.Commission)
	if cash.IsNegative() {
		return FillResult{Status: RejectedInsufficientFunds}
	}
	l.cash = cash

	pnl := p.reduce(f.Quantity, f.Price, f.Commission)
	l.realizedPnL = l.realizedPnL.Add(pnl)
	if p.Quantity == 0 {
		delete(l.positions, f.Symbol)
	}

	return FillResult{Status: Filled, RealizedPnL: pnl}
}

// MarkToMarket revalues a held position at close. Cash and realized P&L
// are untouched.
func (l *Ledger) MarkToMarket(symbol string, close decimal.Decimal) {
	if p, ok := l.positions[symbol]; ok {
		p.mark(close)
	}
}

// Snapshot captures the ledger at t. Positions are deep copies.
func (l *Ledger) Snapshot(t time.Time) Snapshot {
	s := Snapshot{
		Time:      t,
		Cash:      l.cash,
		Equity:    l.Equity(),
		Positions: make(map[string]Position, len(l.positions)),
	}
	for sym, p := range l.positions {
		s.Positions[sym] = *p
	}
	return s
}

// Check verifies the accounting invariants against the latest close of
// every held symbol: cash and quantities are non-negative and equity equals
// cash plus quantity times close.
func (l *Ledger) Check(closes map[string]decimal.Decimal) error {
	if l.cash.IsNegative() {
		return fmt.Errorf("%w: negative cash %s", ErrInvariant, l.cash)
	}

	want := l.cash
	for sym, p := range l.positions {
		if p.Quantity <= 0 {
			return fmt.Errorf("%w: %s quantity %d", ErrInvariant, sym, p.Quantity)
		}
		c, ok := closes[sym]
		if !ok {
			return fmt.Errorf("%w: no close for held symbol %s", ErrInvariant, sym)
		}
		want = want.Add(c.Mul(decimal.NewFromInt(p.Quantity)))
	}

	if got := l.Equity(); !got.Equal(want) {
		return fmt.Errorf("%w: equity %s != cash + positions %s", ErrInvariant, got, want)
	}
	return nil
}

func valid(f Fill) bool {
	return f.Quantity > 0 && f.Price.IsPositive() && !f.Commission.IsNegative()
}
