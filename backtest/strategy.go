package backtest

import "github.com/rustyeddy/portsim/market"

// Strategy maps each bar to an optional directional signal. ok=false means
// no action on this bar.
type Strategy interface {
	Next(b market.Bar) (sig market.Signal, ok bool)
}

// Initializer is implemented by strategies that want history before the
// replay starts. Init gets its own copy of the history bars.
type Initializer interface {
	Init(history []market.Bar)
}

// Namer lets a strategy label its results.
type Namer interface {
	Name() string
}

func strategyName(s Strategy) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return "unnamed"
}
