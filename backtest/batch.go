package backtest

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rustyeddy/portsim/market"
	"golang.org/x/sync/errgroup"
)

// Job is one independent run in a batch. Strategy is a constructor because
// strategies carry state and must not be shared between engines.
type Job struct {
	Name     string
	Config   Config
	Strategy func() (Strategy, error)
	Bars     []market.Bar
	Options  []Option
}

// RunBatch executes jobs on at most workers goroutines. Results come back
// in job order. The first failing job cancels the rest.
func RunBatch(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if job.Strategy == nil {
				return fmt.Errorf("job %d (%s): %w: nil strategy constructor", i, job.Name, ErrInvalidConfig)
			}
			strat, err := job.Strategy()
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Name, err)
			}
			res, err := New(job.Config, strat, job.Options...).RunContext(ctx, job.Bars)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Name, err)
			}
			if job.Name != "" {
				res.Strategy = job.Name
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
