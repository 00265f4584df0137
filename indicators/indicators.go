// Package indicators provides moving averages for strategies, as batch
// functions over a bar slice and as streaming structs.
package indicators

import "github.com/rustyeddy/portsim/market"

// Indicator computes a single streaming value from bars.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns 0 until Ready.
	Value() float64
}
