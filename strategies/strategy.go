// Package strategies holds the reference strategies the CLI and tests run.
// Strategies are picked by name through a switch; there is no registry.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/portsim/market"
)

// Strategy has the method set the backtest engine consumes.
type Strategy interface {
	Next(b market.Bar) (market.Signal, bool)
}

// Params carries the knobs the named strategies accept. Zero values fall
// back to each strategy's defaults.
type Params struct {
	Fast  int    `json:"fast" yaml:"fast"`
	Slow  int    `json:"slow" yaml:"slow"`
	Every int    `json:"every" yaml:"every"`
	Kind  string `json:"kind" yaml:"kind"`

	// ADX enables the trend filter on ma-cross when positive.
	ADX          int     `json:"adx,omitempty" yaml:"adx,omitempty"`
	ADXThreshold float64 `json:"adx_threshold,omitempty" yaml:"adx_threshold,omitempty"`
}

// Names lists the strategies ByName understands.
func Names() []string {
	return []string{"noop", "buy-and-hold", "alternate", "always-buy", "ma-cross", "ma-cross-adx"}
}

func ByName(name string, p Params) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "noop", "none":
		return Noop{}, nil

	case "buy-and-hold", "open-once":
		return &OpenOnce{}, nil

	case "alternate":
		return &Alternating{Every: p.Every}, nil

	case "always-buy":
		return AlwaysBuy{}, nil

	case "ma-cross", "sma-cross", "ema-cross", "ma-cross-adx":
		kind := p.Kind
		if strings.HasPrefix(key, "ema") {
			kind = KindEMA
		}
		s, err := NewMACross(p.Fast, p.Slow, kind)
		if err != nil {
			return nil, err
		}
		if p.ADX > 0 || strings.HasSuffix(key, "-adx") {
			s.FilterADX(p.ADX, p.ADXThreshold)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}
