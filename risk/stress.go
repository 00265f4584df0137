package risk

// Scenario shocks the return distribution by Shock standard deviations.
type Scenario struct {
	Name  string  `json:"name"`
	Shock float64 `json:"shock"`
}

type StressResult struct {
	Scenario
	Return float64 `json:"return"`
	Value  float64 `json:"value"`
	PnL    float64 `json:"pnl"`
}

func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "flash_crash", Shock: -5},
		{Name: "market_crash", Shock: -3},
		{Name: "moderate_decline", Shock: -2},
		{Name: "mild_correction", Shock: -1},
		{Name: "rally", Shock: 2},
	}
}

// Stress applies each scenario to a portfolio of the given value:
// shocked return = mean + shock*std, value' = value*(1+return).
// Nothing is mutated; with fewer than two returns every shock is zero.
func Stress(returns []float64, value float64, scenarios []Scenario) []StressResult {
	mean, std, _ := meanStd(returns)

	out := make([]StressResult, 0, len(scenarios))
	for _, sc := range scenarios {
		r := mean + sc.Shock*std
		v := value * (1 + r)
		out = append(out, StressResult{
			Scenario: sc,
			Return:   r,
			Value:    v,
			PnL:      v - value,
		})
	}
	return out
}
