package market

import "fmt"

type Side int8

const (
	SideBuy  Side = +1
	SideSell Side = -1
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "BUY", "buy":
		*s = SideBuy
	case "SELL", "sell":
		*s = SideSell
	default:
		return fmt.Errorf("unknown side %q", string(b))
	}
	return nil
}

type OrderType string

const (
	MarketOrder OrderType = "market"
)

// Order is built by the engine from a non-zero signal and never persisted.
type Order struct {
	Symbol   string
	Side     Side
	Quantity int64
	Type     OrderType
}
