package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

// Run summarizes one finished backtest.
type Run struct {
	RunID    string
	Created  time.Time
	Strategy string
	Symbol   string
	Dataset  string
	Config   []byte

	// Execution model
	Fraction   float64
	Commission string
	Slippage   string

	Start time.Time
	End   time.Time
	Bars  int

	Trades     int
	OpenTrades int
	Wins       int
	Losses     int
	Rejected   int

	StartEquity float64
	EndEquity   float64

	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64
	MaxDDPct     float64
	Sharpe       float64
	Sortino      float64
	VaR95        float64
	CVaR95       float64

	OrgPath string
	Notes   []string
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// Org renders the run as an Org-mode block.
func (r *Run) Org() (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrgTemplate.Execute(buf, r); err != nil {
		return "", fmt.Errorf("render run org: %w", err)
	}
	return buf.String(), nil
}

// WriteOrg renders the run to r.OrgPath.
func (r *Run) WriteOrg() error {
	if r.OrgPath == "" {
		return fmt.Errorf("write run org: no path")
	}
	s, err := r.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0644)
}

const RunOrgTemplate = `* BACKTEST: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:BARS:        {{.Bars}}
:START_EQ:    {{printf "%.2f" .StartEquity}}
:END_EQ:      {{printf "%.2f" .EndEquity}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:TRADES:      {{.Trades}}
:OPEN:        {{.OpenTrades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:REJECTED:    {{.Rejected}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Execution Model
| Parameter       | Value |
|-----------------+-------|
| Fraction        | {{printf "%.2f" (mul100 .Fraction)}}% |
| Commission      | {{.Commission}} |
| Slippage        | {{.Slippage}} |
{{- if .Config }}
| Config          | {{printf "%s" .Config}} |
{{- end }}

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" .MaxDDPct}}%*
- Win Rate:         *{{printf "%.2f" (mul100 .WinRate)}}%*
- Profit Factor:    *{{printf "%.2f" .ProfitFactor}}*
- Sharpe:           *{{printf "%.3f" .Sharpe}}*
- Sortino:          *{{printf "%.3f" .Sortino}}*
- VaR 95%:          *{{printf "%.4f" .VaR95}}*
- CVaR 95%:         *{{printf "%.4f" .CVaR95}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Open    | {{.OpenTrades}} |
| Total   | {{.Trades}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
