package testing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/database/memory"
)

// GenesisTick is the tick a TestEnv starts at.
const GenesisTick uint64 = 100

// TestEnv manages a test ledger environment for transaction testing.
// It runs a real ledger service on in-memory storage and records every
// published notification.
type TestEnv struct {
	t        *testing.T
	svc      *service.Service
	db       *memory.DB
	recorder *events.Recorder
	accounts map[string]*Account
}

// NewTestEnv creates an environment whose genesis funds each account with
// DefaultFunding.
func NewTestEnv(t *testing.T, accounts ...*Account) *TestEnv {
	t.Helper()
	env := NewTestEnvWithConfig(t, FundedConfig(accounts...))
	env.Register(accounts...)
	return env
}

// FundedConfig returns a service configuration starting at GenesisTick
// with each account funded with DefaultFunding.
func FundedConfig(accounts ...*Account) service.Config {
	cfg := service.DefaultConfig()
	cfg.Genesis.Tick = GenesisTick
	for _, acc := range accounts {
		cfg.Genesis.Accounts = append(cfg.Genesis.Accounts, service.GenesisAccount{
			Address: acc.Address,
			Balance: DefaultFunding,
		})
	}
	return cfg
}

// NewTestEnvWithConfig creates an environment from an explicit service
// configuration. Accounts in cfg.Genesis are not known to the env for
// auto-signing until Register is called. Notifications also reach sinks.
func NewTestEnvWithConfig(t *testing.T, cfg service.Config, sinks ...events.Sink) *TestEnv {
	t.Helper()
	db := memory.NewDB()
	recorder := &events.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var sink events.Sink = recorder
	if len(sinks) > 0 {
		sink = events.NewFanout(append([]events.Sink{recorder}, sinks...)...)
	}

	svc, err := service.New(context.Background(), db, cfg, sink, logger)
	if err != nil {
		t.Fatalf("Failed to create ledger service: %v", err)
	}

	return &TestEnv{
		t:        t,
		svc:      svc,
		db:       db,
		recorder: recorder,
		accounts: make(map[string]*Account),
	}
}

// Register makes acc known to the env so Submit signs for it.
func (e *TestEnv) Register(accounts ...*Account) {
	for _, acc := range accounts {
		e.accounts[acc.Address] = acc
	}
}

// Service returns the ledger service under test.
func (e *TestEnv) Service() *service.Service {
	return e.svc
}

// Close closes the current tick and opens the next one.
func (e *TestEnv) Close() {
	e.t.Helper()
	if _, err := e.svc.AcceptLedger(context.Background()); err != nil {
		e.t.Fatalf("Failed to accept ledger: %v", err)
	}
}

// Advance moves the clock forward by n ticks.
func (e *TestEnv) Advance(n uint64) {
	e.t.Helper()
	if _, err := e.svc.Advance(context.Background(), n); err != nil {
		e.t.Fatalf("Failed to advance clock: %v", err)
	}
}

// AdvanceTo moves the clock forward to tick. It never moves it back.
func (e *TestEnv) AdvanceTo(tick uint64) {
	e.t.Helper()
	if now := e.Tick(); tick > now {
		e.Advance(tick - now)
	}
}

// Tick returns the current tick.
func (e *TestEnv) Tick() uint64 {
	return e.svc.CurrentTick()
}

// Submit signs transaction with its submitting account, when the env knows
// it, and with each extra signer, then applies it. A missing Sequence is
// filled from the ledger.
func (e *TestEnv) Submit(transaction tx.Transaction, signers ...*Account) TxResult {
	e.t.Helper()
	common := transaction.GetCommon()
	if common.Account != "" {
		if owner, ok := e.accounts[common.Account]; ok {
			signers = append([]*Account{owner}, signers...)
		}
	}
	return e.SubmitUnsigned(transaction, signers...)
}

// SubmitUnsigned applies transaction signed only by the given signers.
func (e *TestEnv) SubmitUnsigned(transaction tx.Transaction, signers ...*Account) TxResult {
	e.t.Helper()
	e.autoFillSequence(transaction)

	env, err := tx.NewEnvelope(transaction)
	if err != nil {
		e.t.Fatalf("Failed to encode transaction: %v", err)
	}
	for _, s := range signers {
		env.Sign(s.Key)
	}
	return e.SubmitEnvelope(env)
}

// SubmitEnvelope applies a prepared envelope.
func (e *TestEnv) SubmitEnvelope(env *tx.Envelope) TxResult {
	return newTxResult(e.svc.Submit(context.Background(), env))
}

func (e *TestEnv) autoFillSequence(transaction tx.Transaction) {
	common := transaction.GetCommon()
	if common.Account == "" || common.Sequence != nil {
		return
	}
	root, err := e.svc.Account(context.Background(), common.Account)
	if err != nil {
		// Leave it unset; the engine reports the problem.
		return
	}
	seq := root.Sequence
	common.Sequence = &seq
}

// Balance returns the balance of an account, zero if it does not exist.
func (e *TestEnv) Balance(acc *Account) drops.Drops {
	e.t.Helper()
	root := e.accountRoot(acc)
	if root == nil {
		return 0
	}
	return root.Balance
}

// Seq returns the next sequence number of an account.
func (e *TestEnv) Seq(acc *Account) uint32 {
	e.t.Helper()
	root := e.accountRoot(acc)
	if root == nil {
		e.t.Fatalf("Account %s does not exist", acc)
	}
	return root.Sequence
}

// Exists reports whether the account root exists.
func (e *TestEnv) Exists(acc *Account) bool {
	e.t.Helper()
	return e.accountRoot(acc) != nil
}

func (e *TestEnv) accountRoot(acc *Account) *entry.AccountRoot {
	e.t.Helper()
	root, err := e.svc.Account(context.Background(), acc.Address)
	if errors.Is(err, service.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		e.t.Fatalf("Failed to read account %s: %v", acc, err)
	}
	return root
}

// Swap returns the live swap with the given id, or nil.
func (e *TestEnv) Swap(id string) *entry.Swap {
	e.t.Helper()
	s, err := e.svc.Swap(context.Background(), id)
	if errors.Is(err, service.ErrSwapNotFound) {
		return nil
	}
	if err != nil {
		e.t.Fatalf("Failed to read swap %s: %v", id, err)
	}
	return s
}

// Events returns every notification published so far.
func (e *TestEnv) Events() []events.Event {
	return e.recorder.Events()
}

// ResetEvents forgets recorded notifications.
func (e *TestEnv) ResetEvents() {
	e.recorder.Reset()
}

// EntryCount returns the number of stored keys, including the clock.
func (e *TestEnv) EntryCount() int {
	return e.db.Len()
}
