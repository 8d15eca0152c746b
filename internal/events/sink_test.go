package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		Type:       TypeInitiated,
		SwapID:     "ab",
		TxHash:     "cd",
		Tick:       100,
		Initiator:  "sInitiator",
		Redeemer:   "sRedeemer",
		Commitment: "043a",
		Amount:     1_000_000_000,
		ExpiryTick: 600,
		ExpiresIn:  500,
	}
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := sampleEvent()

	first := NewMockSink(ctrl)
	second := NewMockSink(ctrl)
	gomock.InOrder(
		first.EXPECT().Publish(gomock.Any(), ev).Return(nil),
		second.EXPECT().Publish(gomock.Any(), ev).Return(nil),
	)

	f := NewFanout(first)
	f.Add(second)
	require.NoError(t, f.Publish(context.Background(), ev))
}

func TestFanoutKeepsGoingAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	ev := sampleEvent()
	boom := errors.New("journal down")

	failing := NewMockSink(ctrl)
	failing.EXPECT().Publish(gomock.Any(), ev).Return(boom)
	rec := &Recorder{}

	err := NewFanout(failing, rec).Publish(context.Background(), ev)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []Event{ev}, rec.Events())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ev := sampleEvent()
	require.NoError(t, NewLogSink(logger, slog.LevelInfo).Publish(context.Background(), ev))
	out := buf.String()
	assert.Contains(t, out, "msg=\"swap event\"")
	assert.Contains(t, out, "type=initiated")
	assert.Contains(t, out, "expiry_tick=600")

	buf.Reset()
	ev = Event{Type: TypeRedeemed, Initiator: "sInitiator", Secret: "73", Payout: "sRedeemer"}
	require.NoError(t, NewLogSink(logger, slog.LevelInfo).Publish(context.Background(), ev))
	assert.Contains(t, buf.String(), "secret=73")
	assert.NotContains(t, buf.String(), "expiry_tick")

	// Below the handler's level nothing is written.
	buf.Reset()
	require.NoError(t, NewLogSink(logger, slog.LevelDebug).Publish(context.Background(), ev))
	assert.Empty(t, buf.String())
}

func TestRecorderReset(t *testing.T) {
	rec := &Recorder{}
	require.NoError(t, rec.Publish(context.Background(), sampleEvent()))
	assert.Len(t, rec.Events(), 1)
	rec.Reset()
	assert.Empty(t, rec.Events())
}

func TestTerminal(t *testing.T) {
	assert.False(t, Event{Type: TypeInitiated}.Terminal())
	for _, typ := range []Type{TypeRedeemed, TypeRefunded, TypeInstantRefunded} {
		assert.True(t, Event{Type: typ}.Terminal(), typ)
	}
}
