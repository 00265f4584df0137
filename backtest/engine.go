// Package backtest replays a strategy over a bar sequence. A run is a
// single-threaded left-to-right fold: signal, size, cost, ledger, journal,
// snapshot. Independent runs may execute concurrently with RunBatch.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rustyeddy/portsim/cost"
	"github.com/rustyeddy/portsim/id"
	"github.com/rustyeddy/portsim/journal"
	"github.com/rustyeddy/portsim/ledger"
	"github.com/rustyeddy/portsim/market"
	"github.com/rustyeddy/portsim/metrics"
	"github.com/rustyeddy/portsim/risk"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRun    = errors.New("engine already run")
	ErrInvalidConfig = errors.New("invalid config")
)

type State int

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Config struct {
	InitialCash float64         `json:"initial_cash" yaml:"initial_cash"`
	Fraction    float64         `json:"fraction" yaml:"fraction"`
	ExitFull    bool            `json:"exit_full" yaml:"exit_full"`
	Seed        int64           `json:"seed" yaml:"seed"`
	Metrics     metrics.Options `json:"metrics" yaml:"metrics"`
}

func (c Config) Validate() error {
	if c.InitialCash <= 0 || math.IsInf(c.InitialCash, 0) || math.IsNaN(c.InitialCash) {
		return fmt.Errorf("%w: initial cash must be positive and finite, got %v", ErrInvalidConfig, c.InitialCash)
	}
	if c.Fraction < 0 || c.Fraction > 1 || math.IsNaN(c.Fraction) {
		return fmt.Errorf("%w: fraction must be within [0, 1], got %v", ErrInvalidConfig, c.Fraction)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Fraction == 0 {
		c.Fraction = risk.DefaultFraction
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	return c
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithCommission(c cost.Commission) Option {
	return func(e *Engine) { e.commission = c }
}

func WithSlippage(s cost.Slippage) Option {
	return func(e *Engine) { e.slippage = s }
}

// WithSizer replaces the fixed-fraction sizer derived from Config.
func WithSizer(s risk.Sizer) Option {
	return func(e *Engine) { e.sizer = s }
}

// WithHistory supplies bars an Initializer strategy sees before the replay.
func WithHistory(bars []market.Bar) Option {
	return func(e *Engine) { e.history = slices.Clone(bars) }
}

// Engine runs one backtest. It owns the ledger and trade book for the
// duration of the run and cannot be reused.
type Engine struct {
	cfg        Config
	strat      Strategy
	log        *zap.Logger
	commission cost.Commission
	slippage   cost.Slippage
	sizer      risk.Sizer
	history    []market.Bar

	state  State
	ledger *ledger.Ledger
	book   *journal.Book
	ids    *id.Generator
	closes map[string]decimal.Decimal
	fills  []FillEvent
	totals totals
}

type totals struct {
	filled     int
	rejected   int
	exposed    int
	commission decimal.Decimal
	slippage   decimal.Decimal
}

// New builds an engine with no commission, no slippage and fixed-fraction
// sizing unless options say otherwise.
func New(cfg Config, strat Strategy, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:        cfg,
		strat:      strat,
		log:        zap.NewNop(),
		commission: cost.NoCommission{},
		slippage:   cost.NoSlippage{},
		sizer:      risk.FixedFraction{Fraction: cfg.Fraction, ExitFull: cfg.ExitFull},
		closes:     make(map[string]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() State { return e.state }

// Run replays bars with a background context.
func (e *Engine) Run(bars []market.Bar) (Result, error) {
	return e.RunContext(context.Background(), bars)
}

// RunContext replays bars in order. Input errors are returned before the
// loop starts and leave the engine NotStarted. ctx is checked between bars.
func (e *Engine) RunContext(ctx context.Context, bars []market.Bar) (Result, error) {
	if e.state != NotStarted {
		return Result{}, fmt.Errorf("%w: state %s", ErrAlreadyRun, e.state)
	}
	if e.strat == nil {
		return Result{}, fmt.Errorf("%w: nil strategy", ErrInvalidConfig)
	}
	if err := e.cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := market.ValidateBars(bars); err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}

	e.state = Running
	e.ledger = ledger.New(decimal.NewFromFloat(e.cfg.InitialCash))
	e.book = journal.NewBook()
	e.ids = id.NewGenerator(e.cfg.Seed)

	name := strategyName(e.strat)
	log := e.log.With(zap.String("strategy", name))
	log.Debug("backtest start", zap.Int("bars", len(bars)), zap.Float64("initial_cash", e.cfg.InitialCash))

	if init, ok := e.strat.(Initializer); ok {
		init.Init(slices.Clone(e.history))
	}

	benchSym := bars[0].Key()
	snapshots := make([]ledger.Snapshot, 0, len(bars))
	benchmark := make([]float64, 0, len(bars))

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			e.state = Failed
			return Result{}, fmt.Errorf("backtest interrupted at bar %d: %w", i, err)
		}

		sym := bar.Key()
		e.closes[sym] = decimal.NewFromFloat(bar.Close)

		if sig, ok := e.strat.Next(bar); ok {
			if side, ok := sig.Side(); ok {
				if err := e.execute(log, i, bar, side); err != nil {
					e.state = Failed
					log.Error("order failed", zap.Int("bar", i), zap.Error(err))
					return Result{}, fmt.Errorf("bar %d: %w", i, err)
				}
			}
		}

		for _, p := range e.ledger.Positions() {
			e.ledger.MarkToMarket(p.Symbol, e.closes[p.Symbol])
		}
		if len(e.ledger.Positions()) > 0 {
			e.totals.exposed++
		}
		snapshots = append(snapshots, e.ledger.Snapshot(bar.Time))
		benchmark = append(benchmark, e.closes[benchSym].InexactFloat64())

		if err := e.ledger.Check(e.closes); err != nil {
			e.state = Failed
			log.Error("ledger check failed", zap.Int("bar", i), zap.Error(err))
			return Result{}, fmt.Errorf("bar %d: %w", i, err)
		}
	}

	trades := e.book.Trades()
	perf, err := metrics.Compute(snapshots, trades, metrics.Returns(benchmark), e.cfg.Metrics)
	if err != nil {
		e.state = Failed
		return Result{}, err
	}
	perf.Fills = e.totals.filled
	perf.RejectedOrders = e.totals.rejected
	perf.TotalCommission = e.totals.commission.InexactFloat64()
	perf.TotalSlippage = e.totals.slippage.InexactFloat64()
	perf.Exposure = float64(e.totals.exposed) / float64(len(bars))

	e.state = Completed

	res := Result{
		Strategy:    name,
		Symbol:      benchSym,
		InitialCash: decimal.NewFromFloat(e.cfg.InitialCash),
		FinalCash:   e.ledger.Cash(),
		Start:       bars[0].Time,
		End:         bars[len(bars)-1].Time,
		Equity:      snapshots,
		Trades:      trades,
		Fills:       e.fills,
		Metrics:     perf,
	}
	log.Info("backtest complete",
		zap.Int("bars", len(bars)),
		zap.Int("fills", perf.Fills),
		zap.Int("rejected", perf.RejectedOrders),
		zap.Int("trades", len(trades)),
		zap.String("final_equity", res.FinalEquity().StringFixed(2)))
	return res, nil
}

// execute sizes, costs and applies one order at the bar's close.
func (e *Engine) execute(log *zap.Logger, i int, bar market.Bar, side market.Side) error {
	sym := bar.Key()
	price := e.closes[sym]

	qty := e.sizer.Size(side, e.ledger.Cash(), price, e.ledger.Held(sym))
	if qty <= 0 {
		log.Debug("order skipped", zap.Int("bar", i), zap.Stringer("side", side), zap.String("symbol", sym))
		return nil
	}

	order := market.Order{Symbol: sym, Side: side, Quantity: qty, Type: market.MarketOrder}
	slip := e.slippage.Calculate(order, price)
	fillPrice := price.Add(slip)
	commission := e.commission.Calculate(cost.TradeIntent{
		Symbol:   sym,
		Side:     side,
		Quantity: qty,
		Price:    fillPrice,
	})

	fill := ledger.Fill{
		Symbol:     sym,
		Side:       side,
		Quantity:   qty,
		Price:      fillPrice,
		Commission: commission,
		Slippage:   slip,
		Time:       bar.Time,
	}

	fillID, err := e.ids.At(bar.Time)
	if err != nil {
		return err
	}
	res := e.ledger.Apply(fill)
	ev := FillEvent{
		ID:          fillID,
		Bar:         i,
		Fill:        fill,
		Status:      res.Status,
		RealizedPnL: res.RealizedPnL,
	}
	e.fills = append(e.fills, ev)

	if !res.Status.Filled() {
		e.totals.rejected++
		log.Debug("order rejected",
			zap.Int("bar", i),
			zap.String("symbol", sym),
			zap.Stringer("side", side),
			zap.Int64("quantity", qty),
			zap.Stringer("status", res.Status))
		return nil
	}

	e.totals.filled++
	e.totals.commission = e.totals.commission.Add(fill.Commission)
	e.totals.slippage = e.totals.slippage.Add(slip.Abs().Mul(decimal.NewFromInt(qty)))

	switch side {
	case market.SideBuy:
		e.book.OnBuy(fill, ev.ID)
	case market.SideSell:
		e.book.OnSell(fill, res.RealizedPnL)
	}
	return nil
}
