// Package relationaldb journals committed swap notifications in a SQL
// database so they can be queried after the fact.
package relationaldb

import (
	"context"
	"time"

	"github.com/LeJamon/goswapd/internal/events"
)

// EventRecord is a journaled notification.
type EventRecord struct {
	// Seq orders records by insertion
	Seq int64 `json:"seq"`

	events.Event

	RecordedAt time.Time `json:"recorded_at"`
}

// EventQuery filters ListEvents. Zero fields match everything.
type EventQuery struct {
	SwapID  string
	Account string
	Type    events.Type
	// AfterSeq returns only records with a greater Seq
	AfterSeq int64
	Limit    int
}

// MaxQueryLimit caps the number of records returned by one query.
const MaxQueryLimit = 1000

// EventStore is the append-only journal.
type EventStore interface {
	// Append stores events in one database transaction
	Append(ctx context.Context, evs ...events.Event) error

	// ListBySwap returns every record for swapID in insertion order
	ListBySwap(ctx context.Context, swapID string) ([]EventRecord, error)

	// ListEvents returns records matching q in insertion order
	ListEvents(ctx context.Context, q EventQuery) ([]EventRecord, error)

	// Count returns the number of journaled records
	Count(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
