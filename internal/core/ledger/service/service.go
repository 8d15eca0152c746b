// Package service hosts the swap ledger: it owns state storage, the logical
// clock and the serialization of transactions that touch the same keys.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	_ "github.com/LeJamon/goswapd/internal/core/tx/all"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrSwapNotFound    = errors.New("swap not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrTickOverflow    = errors.New("tick overflow")
	ErrInvalidAdvance  = errors.New("advance must be positive")
)

// DefaultCacheSize is the number of entries kept by the read cache.
const DefaultCacheSize = 4096

// Config holds configuration for the ledger Service
type Config struct {
	// SwapDeposit is the storage deposit locked with every swap
	SwapDeposit drops.Drops

	// MaxExpiryOffset bounds the expiry offset of new swaps; zero means unbounded
	MaxExpiryOffset uint64

	// CacheSize is the capacity of the entry cache
	CacheSize int

	// BatchWorkers bounds SubmitBatch concurrency; zero means unbounded
	BatchWorkers int

	// Genesis lists the accounts created when the state is empty
	Genesis GenesisConfig
}

// DefaultConfig returns the default service configuration
func DefaultConfig() Config {
	return Config{
		SwapDeposit:     drops.Units(2),
		MaxExpiryOffset: 1_000_000,
		CacheSize:       DefaultCacheSize,
		BatchWorkers:    8,
	}
}

// Service manages ledger state and the logical clock
type Service struct {
	config Config
	logger *slog.Logger

	db    database.DB
	cache *lru.Cache[[32]byte, []byte]
	locks *keyLocks
	sink  events.Sink

	// clock is held shared by in-flight transactions and exclusively while
	// the tick advances, so every transaction sees a single tick.
	clock sync.RWMutex
	tick  atomic.Uint64

	applied  atomic.Uint64
	rejected atomic.Uint64
}

// New opens a Service over db. On an empty database it writes the genesis
// accounts; otherwise it resumes from the stored tick.
func New(ctx context.Context, db database.DB, cfg Config, sink events.Sink, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = events.Discard
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	s := &Service{
		config: cfg,
		logger: logger.With("component", "ledger"),
		db:     db,
		cache:  cache,
		locks:  newKeyLocks(),
		sink:   sink,
	}
	if err := s.open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Config returns the service configuration
func (s *Service) Config() Config {
	return s.config
}

// CurrentTick returns the tick new transactions execute at
func (s *Service) CurrentTick() uint64 {
	return s.tick.Load()
}

// Advance moves the clock forward by n ticks and returns the new tick.
// It waits for in-flight transactions to finish.
func (s *Service) Advance(ctx context.Context, n uint64) (uint64, error) {
	if n == 0 {
		return 0, ErrInvalidAdvance
	}
	s.clock.Lock()
	defer s.clock.Unlock()

	current := s.tick.Load()
	if n > timelock.MaxTick-current {
		return current, ErrTickOverflow
	}
	next := current + n
	if err := s.db.Write(ctx, tickKey, encodeTick(next)); err != nil {
		return current, fmt.Errorf("failed to persist tick: %w", err)
	}
	s.tick.Store(next)
	s.logger.Debug("tick advanced", "tick", next)
	return next, nil
}

// AcceptLedger closes the current tick and opens the next one. It
// corresponds to the "ledger_accept" RPC command and returns the closed tick.
func (s *Service) AcceptLedger(ctx context.Context) (uint64, error) {
	next, err := s.Advance(ctx, 1)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

// Run accepts a ledger every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.AcceptLedger(ctx); err != nil {
				s.logger.Error("ledger accept failed", "err", err)
			}
		}
	}
}
