package relationaldb

import (
	"context"

	"github.com/LeJamon/goswapd/internal/events"
)

// Sink journals every published event into store.
func Sink(store EventStore) events.Sink {
	return events.SinkFunc(func(ctx context.Context, ev events.Event) error {
		return store.Append(ctx, ev)
	})
}
