// Package journal tracks round-trip trades during a run (Book) and persists
// finished runs through a Recorder (CSV or SQLite).
package journal

import (
	"time"
)

// TradeRecord is the persisted, float form of a Trade.
type TradeRecord struct {
	RunID           string
	TradeID         string
	Symbol          string
	Side            string
	Quantity        float64
	EntryPrice      float64
	ExitPrice       float64
	EntryCommission float64
	ExitCommission  float64
	OpenTime        time.Time
	CloseTime       time.Time // zero while open
	RealizedPL      float64
	Status          string // OPEN or CLOSED
}

// EquitySnapshot is the persisted form of a per-bar ledger snapshot.
type EquitySnapshot struct {
	RunID         string
	Time          time.Time
	Cash          float64
	Equity        float64
	PositionValue float64
}

type Recorder interface {
	RecordRun(Run) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)
