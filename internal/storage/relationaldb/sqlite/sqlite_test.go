package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *relationaldb.SQLStore {
	t.Helper()
	cfg := relationaldb.SQLiteConfig(filepath.Join(t.TempDir(), "journal.db"))
	store, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEvents() []events.Event {
	return []events.Event{
		{Type: events.TypeInitiated, SwapID: "aa", TxHash: "01", Tick: 100, Initiator: "alice", Redeemer: "bob", Commitment: "cc", Amount: 1000, Deposit: 10, ExpiryTick: 600, ExpiresIn: 500},
		{Type: events.TypeInitiated, SwapID: "bb", TxHash: "02", Tick: 101, Initiator: "carol", Redeemer: "alice", Commitment: "dd", Amount: 5, Deposit: 10, ExpiryTick: 700},
		{Type: events.TypeRedeemed, SwapID: "aa", TxHash: "03", Tick: 102, Initiator: "alice", Redeemer: "bob", Secret: "73", Payout: "bob", Amount: 1000, Deposit: 10},
	}
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Append(ctx, sampleEvents()...))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recs, err := store.ListBySwap(ctx, "aa")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, events.TypeInitiated, recs[0].Type)
	assert.Equal(t, uint64(600), recs[0].ExpiryTick)
	assert.Equal(t, "cc", recs[0].Commitment)
	assert.Equal(t, events.TypeRedeemed, recs[1].Type)
	assert.Equal(t, "73", recs[1].Secret)
	assert.Equal(t, "bob", recs[1].Payout)
	assert.Less(t, recs[0].Seq, recs[1].Seq)
	assert.False(t, recs[0].RecordedAt.IsZero())
}

func TestListEventsFilters(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Append(ctx, sampleEvents()...))

	recs, err := store.ListEvents(ctx, relationaldb.EventQuery{Account: "alice"})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = store.ListEvents(ctx, relationaldb.EventQuery{Account: "bob", Type: events.TypeRedeemed})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "03", recs[0].TxHash)

	recs, err = store.ListEvents(ctx, relationaldb.EventQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = store.ListEvents(ctx, relationaldb.EventQuery{AfterSeq: recs[0].Seq})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = store.ListEvents(ctx, relationaldb.EventQuery{Limit: relationaldb.MaxQueryLimit + 1})
	assert.ErrorIs(t, err, relationaldb.ErrInvalidLimit)
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	sink := relationaldb.Sink(store)
	require.NoError(t, sink.Publish(ctx, sampleEvents()[0]))

	recs, err := store.ListBySwap(ctx, "aa")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestClosed(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Close())

	err := store.Append(context.Background(), sampleEvents()[0])
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
	_, err = store.Count(context.Background())
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
}

func TestCloseTwice(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	err := store.Ping(context.Background())
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
}

// Run with -race: Close must not race with writers checking the handle.
func TestCloseWhileAppending(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = store.Append(ctx, sampleEvents()[0])
				_, _ = store.ListBySwap(ctx, "aa")
			}
		}()
	}
	require.NoError(t, store.Close())
	wg.Wait()

	assert.ErrorIs(t, store.Append(ctx, sampleEvents()[0]), relationaldb.ErrDatabaseClosed)
}

func TestAppendRange(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	largest := events.Event{Type: events.TypeInitiated, SwapID: "max", Tick: math.MaxInt64,
		Amount: drops.MaxDrops, Deposit: 1, ExpiryTick: math.MaxInt64}
	require.NoError(t, store.Append(ctx, largest))
	recs, err := store.ListBySwap(ctx, "max")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, drops.MaxDrops, recs[0].Amount)
	assert.Equal(t, uint64(math.MaxInt64), recs[0].ExpiryTick)

	tests := []struct {
		name string
		ev   events.Event
	}{
		{"amount", events.Event{SwapID: "x", Amount: drops.MaxDrops + 1}},
		{"deposit", events.Event{SwapID: "x", Deposit: math.MaxUint64}},
		{"tick", events.Event{SwapID: "x", Tick: math.MaxInt64 + 1}},
		{"expiry", events.Event{SwapID: "x", ExpiryTick: math.MaxUint64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The whole batch is refused, including the valid first event.
			err := store.Append(ctx, sampleEvents()[0], tt.ev)
			assert.ErrorIs(t, err, relationaldb.ErrValueOutOfRange)
		})
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
