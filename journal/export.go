package journal

import (
	"fmt"

	"github.com/rustyeddy/portsim/ledger"
)

// Export persists a finished run: the run row, then every trade, then the
// equity curve.
func Export(rec Recorder, run Run, trades []Trade, snapshots []ledger.Snapshot) error {
	if run.RunID == "" {
		return fmt.Errorf("export: empty run id")
	}
	if err := rec.RecordRun(run); err != nil {
		return fmt.Errorf("export run %s: %w", run.RunID, err)
	}
	for _, t := range trades {
		if err := rec.RecordTrade(t.Record(run.RunID)); err != nil {
			return fmt.Errorf("export trade %s: %w", t.ID, err)
		}
	}
	for _, s := range snapshots {
		if err := rec.RecordEquity(EquityRecord(run.RunID, s)); err != nil {
			return fmt.Errorf("export equity %s: %w", s.Time.Format("2006-01-02T15:04:05"), err)
		}
	}
	return nil
}

// EquityRecord converts a ledger snapshot into its persisted form.
func EquityRecord(runID string, s ledger.Snapshot) EquitySnapshot {
	return EquitySnapshot{
		RunID:         runID,
		Time:          s.Time,
		Cash:          s.Cash.InexactFloat64(),
		Equity:        s.Equity.InexactFloat64(),
		PositionValue: s.Equity.Sub(s.Cash).InexactFloat64(),
	}
}
