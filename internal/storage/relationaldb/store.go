package relationaldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/events"
)

const eventColumns = "swap_id, type, tx_hash, tick, initiator, redeemer, commitment, amount, deposit, expiry_tick, secret, payout, recorded_at"

// SQLStore implements EventStore on database/sql. db is never reassigned;
// closed guards use after Close.
type SQLStore struct {
	db      *sql.DB
	closed  atomic.Bool
	dialect Dialect
	config  *Config
	logger  *slog.Logger
	now     func() time.Time
}

// Open connects with dialect, applies the schema and returns the store.
// The driver must have been registered by importing it.
func Open(ctx context.Context, dialect Dialect, config *Config, logger *slog.Logger) (*SQLStore, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigurationError("open", "invalid configuration", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	connStr, err := config.BuildConnectionString()
	if err != nil {
		return nil, NewConfigurationError("open", "failed to build connection string", err)
	}

	db, err := sql.Open(dialect.DriverName, connStr)
	if err != nil {
		return nil, NewConnectionError("open", "failed to open database connection", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	s := &SQLStore{
		db:      db,
		dialect: dialect,
		config:  config,
		logger:  logger.With("component", "journal", "driver", dialect.DriverName),
		now:     time.Now,
	}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, NewSchemaError("open", "failed to initialize schema", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	for _, query := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

// Ping tests the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrDatabaseClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return NewConnectionError("ping", "database ping failed", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

func (s *SQLStore) Append(ctx context.Context, evs ...events.Event) error {
	if s.closed.Load() {
		return ErrDatabaseClosed
	}
	if len(evs) == 0 {
		return nil
	}
	for _, ev := range evs {
		if err := checkRange(ev); err != nil {
			return err
		}
	}
	query := fmt.Sprintf("INSERT INTO swap_events (%s) VALUES (%s)", eventColumns, s.dialect.bind(1, 13))

	return s.executeWithRetry(ctx, "append", func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return NewTransactionError("append", "failed to begin transaction", err)
		}
		defer tx.Rollback()

		now := s.now().UTC()
		for _, ev := range evs {
			_, err := tx.ExecContext(ctx, query,
				ev.SwapID, string(ev.Type), ev.TxHash, int64(ev.Tick),
				ev.Initiator, ev.Redeemer, ev.Commitment,
				int64(ev.Amount), int64(ev.Deposit), int64(ev.ExpiryTick),
				ev.Secret, ev.Payout, now,
			)
			if err != nil {
				return NewQueryError("append", "failed to insert event", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return NewTransactionError("append", "failed to commit", err)
		}
		return nil
	})
}

// checkRange rejects values that do not fit the BIGINT columns.
func checkRange(ev events.Event) error {
	for _, f := range []struct {
		name string
		v    uint64
	}{
		{"tick", ev.Tick},
		{"amount", uint64(ev.Amount)},
		{"deposit", uint64(ev.Deposit)},
		{"expiry_tick", ev.ExpiryTick},
	} {
		if f.v > math.MaxInt64 {
			return fmt.Errorf("%w: %s %d", ErrValueOutOfRange, f.name, f.v)
		}
	}
	return nil
}

func (s *SQLStore) ListBySwap(ctx context.Context, swapID string) ([]EventRecord, error) {
	return s.ListEvents(ctx, EventQuery{SwapID: swapID, Limit: MaxQueryLimit})
}

func (s *SQLStore) ListEvents(ctx context.Context, q EventQuery) ([]EventRecord, error) {
	if s.closed.Load() {
		return nil, ErrDatabaseClosed
	}
	if q.Limit < 0 || q.Limit > MaxQueryLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	if q.Limit == 0 {
		q.Limit = MaxQueryLimit
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return s.dialect.Placeholder(len(args))
	}
	if q.SwapID != "" {
		where = append(where, "swap_id = "+arg(q.SwapID))
	}
	if q.Account != "" {
		p1 := arg(q.Account)
		p2 := arg(q.Account)
		where = append(where, fmt.Sprintf("(initiator = %s OR redeemer = %s)", p1, p2))
	}
	if q.Type != "" {
		where = append(where, "type = "+arg(string(q.Type)))
	}
	if q.AfterSeq > 0 {
		where = append(where, "seq > "+arg(q.AfterSeq))
	}

	query := "SELECT seq, " + eventColumns + " FROM swap_events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq LIMIT " + arg(q.Limit)

	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewQueryError("list_events", "failed to query events", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec                             EventRecord
			typ                             string
			tick, amount, deposit, expiryAt int64
		)
		err := rows.Scan(&rec.Seq,
			&rec.SwapID, &typ, &rec.TxHash, &tick,
			&rec.Initiator, &rec.Redeemer, &rec.Commitment,
			&amount, &deposit, &expiryAt,
			&rec.Secret, &rec.Payout, &rec.RecordedAt,
		)
		if err != nil {
			return nil, NewQueryError("list_events", "failed to scan event", err)
		}
		rec.Type = events.Type(typ)
		rec.Tick = uint64(tick)
		rec.Amount = drops.Drops(amount)
		rec.Deposit = drops.Drops(deposit)
		rec.ExpiryTick = uint64(expiryAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("list_events", "failed to read events", err)
	}
	return out, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, ErrDatabaseClosed
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM swap_events").Scan(&n); err != nil {
		return 0, NewQueryError("count", "failed to count events", err)
	}
	return n, nil
}

// executeWithRetry runs operation with linear backoff while it fails with a
// retryable error.
func (s *SQLStore) executeWithRetry(ctx context.Context, name string, operation func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * s.config.RetryDelay
			if delay > s.config.RetryMaxDelay {
				delay = s.config.RetryMaxDelay
			}
			s.logger.Debug("retrying operation", "op", name, "attempt", attempt, "delay", delay, "last_error", lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		opCtx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
		err := operation(opCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	s.logger.Error("operation failed", "op", name, "err", lastErr)
	return lastErr
}
