package backtest_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rustyeddy/portsim/backtest"
	"github.com/rustyeddy/portsim/cost"
	"github.com/rustyeddy/portsim/market"
	"github.com/rustyeddy/portsim/strategies"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func risingBars(n int) []market.Bar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, n)
	for i := range out {
		c := 100 + 0.5*float64(i)
		out[i] = market.Bar{
			Symbol: "ACME",
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.25,
			Low:    c - 0.25,
			Close:  c,
			Volume: 5000,
		}
	}
	return out
}

func TestBuyAndHoldOnRisingSeries(t *testing.T) {
	t.Parallel()

	res, err := backtest.New(backtest.Config{InitialCash: 100000}, &strategies.OpenOnce{}).Run(risingBars(100))
	require.NoError(t, err)

	assert.Equal(t, "buy-and-hold", res.Strategy)
	require.Len(t, res.Trades, 1)
	assert.True(t, res.Trades[0].Open)
	assert.Equal(t, 1, res.Metrics.Trades.Open)
	assert.Zero(t, res.Metrics.Trades.Total)

	assert.True(t, res.FinalEquity().GreaterThan(decimal.NewFromInt(100000)))
	assert.Positive(t, res.Metrics.TotalReturn)
	assert.Zero(t, res.Metrics.MaxDrawdown.Value)
	assert.Equal(t, 100, res.Metrics.Bars)
	assert.InDelta(t, 1.0, res.Metrics.Exposure, 1e-12)
}

func TestCommissionReducesCash(t *testing.T) {
	t.Parallel()

	run := func(c cost.Commission) backtest.Result {
		cfg := backtest.Config{InitialCash: 100000, ExitFull: true}
		res, err := backtest.New(cfg, &strategies.Alternating{Every: 10}, backtest.WithCommission(c)).Run(risingBars(100))
		require.NoError(t, err)
		return res
	}

	free := run(cost.NoCommission{})
	paid := run(cost.NewFixedCommission(10))

	require.Positive(t, paid.Metrics.Trades.Total)
	diff := free.FinalCash.Sub(paid.FinalCash)
	fees := decimal.NewFromInt(int64(paid.Metrics.Fills * 10))
	assert.True(t, diff.GreaterThanOrEqual(decimal.NewFromInt(int64(paid.Metrics.Trades.Total*10))),
		"cash difference %s", diff)
	assert.True(t, decimal.NewFromFloat(paid.Metrics.TotalCommission).Equal(fees))
}

func TestTinyAccountNeverFills(t *testing.T) {
	t.Parallel()

	res, err := backtest.New(backtest.Config{InitialCash: 100}, strategies.AlwaysBuy{}).Run(risingBars(50))
	require.NoError(t, err)

	for _, f := range res.Fills {
		assert.False(t, f.Status.Filled())
	}
	assert.Zero(t, res.Metrics.Fills)
	assert.Empty(t, res.Trades)
	assert.True(t, res.FinalCash.Equal(decimal.NewFromInt(100)))
}

func TestMACrossWithHistory(t *testing.T) {
	t.Parallel()

	all := risingBars(80)
	// dip in the middle so the averages cross twice
	for i := 40; i < 55; i++ {
		c := 120 - 2*float64(i-40)
		all[i].Open, all[i].High, all[i].Low, all[i].Close = c, c, c, c
	}

	strat, err := strategies.NewMACross(3, 8, strategies.KindSMA)
	require.NoError(t, err)

	res, err := backtest.New(backtest.Config{InitialCash: 50000, ExitFull: true}, strat,
		backtest.WithHistory(all[:10]),
	).Run(all[10:])
	require.NoError(t, err)

	assert.Equal(t, "sma-cross(3,8)", res.Strategy)
	assert.NotEmpty(t, res.Fills)
	assert.Len(t, strat.History(), 80)
}

func TestResultReport(t *testing.T) {
	t.Parallel()

	res, err := backtest.New(backtest.Config{InitialCash: 10000, ExitFull: true}, &strategies.Alternating{Every: 5}).Run(risingBars(40))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, "alternate")
	assert.Contains(t, out, "Max drawdown")
	assert.Contains(t, out, "Profit factor")

	core, logs := observer.New(zap.InfoLevel)
	res.Log(zap.New(core))
	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "backtest report", entries[0].Message)
	assert.Equal(t, "trade statistics", entries[1].Message)
	assert.Equal(t, "risk metrics", entries[2].Message)

	run := res.JournalRun("run-1")
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "ACME", run.Symbol)
	assert.Equal(t, res.Metrics.Trades.Total, run.Trades)
	assert.InDelta(t, res.Metrics.TotalReturn*100, run.ReturnPct, 1e-12)
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	bars := risingBars(60)
	names := []string{"noop", "buy-and-hold", "alternate", "ma-cross"}
	jobs := make([]backtest.Job, len(names))
	for i, name := range names {
		jobs[i] = backtest.Job{
			Name:   name,
			Config: backtest.Config{InitialCash: 10000, Seed: int64(i + 1)},
			Bars:   bars,
			Strategy: func() (backtest.Strategy, error) {
				return strategies.ByName(name, strategies.Params{Fast: 3, Slow: 9, Every: 7})
			},
		}
	}

	results, err := backtest.RunBatch(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, names[i], r.Strategy)
		assert.Len(t, r.Equity, len(bars))
	}

	// a batch run matches the same job run alone
	solo, err := backtest.New(jobs[2].Config, &strategies.Alternating{Every: 7}).Run(bars)
	require.NoError(t, err)
	assert.True(t, solo.FinalCash.Equal(results[2].FinalCash))
}

func TestRunBatchFailure(t *testing.T) {
	t.Parallel()

	jobs := []backtest.Job{
		{
			Name:     "ok",
			Config:   backtest.Config{InitialCash: 1000},
			Bars:     risingBars(10),
			Strategy: func() (backtest.Strategy, error) { return strategies.Noop{}, nil },
		},
		{
			Name:     "broken",
			Config:   backtest.Config{InitialCash: -5},
			Bars:     risingBars(10),
			Strategy: func() (backtest.Strategy, error) { return strategies.Noop{}, nil },
		},
	}

	_, err := backtest.RunBatch(context.Background(), jobs, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, backtest.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "broken")
}
