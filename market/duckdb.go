package market

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DuckDB loads bars from a DuckDB database. The table is expected to have
// columns ts, open, high, low, close, volume and symbol.
type DuckDB struct {
	dataSourceName string
	db             *sql.DB
}

func NewDuckDB(dataSourceName string) *DuckDB {
	return &DuckDB{dataSourceName: dataSourceName}
}

func (r *DuckDB) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	r.db = db
	return nil
}

// DB exposes the underlying handle, mostly for seeding tables in tests.
func (r *DuckDB) DB() *sql.DB { return r.db }

func (r *DuckDB) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// LoadBars returns bars for symbol in [from, to) ordered by time. Zero
// bounds are open.
func (r *DuckDB) LoadBars(ctx context.Context, table, symbol string, from, to time.Time) ([]Bar, error) {
	if r.db == nil {
		return nil, fmt.Errorf("duckdb: not connected")
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("duckdb: bad table name %q", table)
	}

	query, args := barsQuery(table, symbol, from, to)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []Bar
	for rows.Next() {
		b := Bar{Symbol: symbol}
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = b.Time.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan bars: %w", err)
	}
	return bars, nil
}

// barsQuery selects one symbol's rows in [from, to). Zero bounds add no
// condition.
func barsQuery(table, symbol string, from, to time.Time) (string, []any) {
	var q strings.Builder
	fmt.Fprintf(&q, "SELECT ts, open, high, low, close, volume FROM %s WHERE symbol = ?", table)
	args := []any{symbol}
	if !from.IsZero() {
		q.WriteString(" AND ts >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		q.WriteString(" AND ts < ?")
		args = append(args, to.UTC())
	}
	q.WriteString(" ORDER BY ts")
	return q.String(), args
}
