package relationaldb

import (
	"fmt"
	"strings"
)

// Dialect holds what differs between SQL backends.
type Dialect struct {
	// DriverName is the database/sql driver name
	DriverName string

	// Schema creates the journal tables
	Schema []string

	// Placeholder renders the n-th (1-based) bind parameter
	Placeholder func(n int) string
}

// Postgres is the lib/pq dialect.
var Postgres = Dialect{
	DriverName: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS swap_events (
			seq BIGSERIAL PRIMARY KEY,
			swap_id CHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			tx_hash CHAR(64) NOT NULL,
			tick BIGINT NOT NULL,
			initiator VARCHAR(64) NOT NULL,
			redeemer VARCHAR(64) NOT NULL,
			commitment VARCHAR(64) NOT NULL,
			amount BIGINT NOT NULL,
			deposit BIGINT NOT NULL,
			expiry_tick BIGINT NOT NULL,
			secret TEXT NOT NULL,
			payout VARCHAR(64) NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_swap_id ON swap_events(swap_id)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_initiator ON swap_events(initiator)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_redeemer ON swap_events(redeemer)`,
	},
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// SQLite is the modernc.org/sqlite dialect.
var SQLite = Dialect{
	DriverName: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS swap_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			swap_id TEXT NOT NULL,
			type TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			tick INTEGER NOT NULL,
			initiator TEXT NOT NULL,
			redeemer TEXT NOT NULL,
			commitment TEXT NOT NULL,
			amount INTEGER NOT NULL,
			deposit INTEGER NOT NULL,
			expiry_tick INTEGER NOT NULL,
			secret TEXT NOT NULL,
			payout TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_swap_id ON swap_events(swap_id)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_initiator ON swap_events(initiator)`,
		`CREATE INDEX IF NOT EXISTS idx_swap_events_redeemer ON swap_events(redeemer)`,
	},
	Placeholder: func(int) string { return "?" },
}

// bind renders the placeholders for n parameters starting at from.
func (d Dialect) bind(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
