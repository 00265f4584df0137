package strategies

import "github.com/rustyeddy/portsim/market"

// Noop never signals.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Next(market.Bar) (market.Signal, bool) {
	return market.Signal{}, false
}

// OpenOnce buys on the first bar it sees and then holds forever.
type OpenOnce struct {
	opened bool
}

func (s *OpenOnce) Name() string { return "buy-and-hold" }

func (s *OpenOnce) Next(b market.Bar) (market.Signal, bool) {
	if s.opened {
		return market.Signal{}, false
	}
	s.opened = true
	return market.Buy(b.Time), true
}

// Alternating buys on bar 0, sells on bar Every, buys on bar 2*Every and
// so on.
type Alternating struct {
	Every int

	n int
}

const DefaultEvery = 10

func (s *Alternating) Name() string { return "alternate" }

func (s *Alternating) Next(b market.Bar) (market.Signal, bool) {
	every := s.Every
	if every <= 0 {
		every = DefaultEvery
	}

	i := s.n
	s.n++
	if i%every != 0 {
		return market.Signal{}, false
	}
	if (i/every)%2 == 0 {
		return market.Buy(b.Time), true
	}
	return market.Sell(b.Time), true
}

// AlwaysBuy signals a buy on every bar.
type AlwaysBuy struct{}

func (AlwaysBuy) Name() string { return "always-buy" }

func (AlwaysBuy) Next(b market.Bar) (market.Signal, bool) {
	return market.Buy(b.Time), true
}
