package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

//go:generate mockgen -destination=mock_sink.go -package=events github.com/LeJamon/goswapd/internal/events Sink

// Sink receives committed notifications. Publish is called after the
// transition's state has been committed; a failing sink cannot undo it.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) error { return nil })

// Fanout delivers each event to every registered sink in registration order.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewFanout creates a Fanout over sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Add registers another sink.
func (f *Fanout) Add(s Sink) {
	f.mu.Lock()
	f.sinks = append(f.sinks, s)
	f.mu.Unlock()
}

// Publish delivers ev to all sinks; it keeps going after a failure and
// returns the joined errors.
func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	f.mu.RLock()
	sinks := make([]Sink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes every event as a structured log record.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a LogSink logging at level.
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	return &LogSink{logger: logger, level: level}
}

func (s *LogSink) Publish(ctx context.Context, ev Event) error {
	attrs := []slog.Attr{
		slog.String("type", string(ev.Type)),
		slog.String("swap_id", ev.SwapID),
		slog.String("tx_hash", ev.TxHash),
		slog.Uint64("tick", ev.Tick),
		slog.String("initiator", ev.Initiator),
	}
	if ev.Redeemer != "" {
		attrs = append(attrs, slog.String("redeemer", ev.Redeemer))
	}
	if ev.Type == TypeInitiated {
		attrs = append(attrs,
			slog.String("commitment", ev.Commitment),
			slog.Uint64("amount", uint64(ev.Amount)),
			slog.Uint64("expiry_tick", ev.ExpiryTick),
		)
	}
	if ev.Secret != "" {
		attrs = append(attrs, slog.String("secret", ev.Secret))
	}
	if ev.Payout != "" {
		attrs = append(attrs, slog.String("payout", ev.Payout))
	}
	s.logger.LogAttrs(ctx, s.level, "swap event", attrs...)
	return nil
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
