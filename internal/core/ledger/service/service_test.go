package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/core/tx/swap"
	"github.com/LeJamon/goswapd/internal/crypto"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/database"
	"github.com/LeJamon/goswapd/internal/storage/database/memory"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	key     *crypto.KeyPair
	address string
}

func newAccount(t *testing.T, name string) account {
	t.Helper()
	kp, err := crypto.NewKeyPair(crypto.KeyTypeEd25519, []byte(name))
	require.NoError(t, err)
	return account{key: kp, address: addresscodec.EncodeAccountID(kp.AccountID())}
}

func genesisFor(accts ...account) GenesisConfig {
	g := GenesisConfig{Tick: 100}
	for _, a := range accts {
		g.Accounts = append(g.Accounts, GenesisAccount{Address: a.address, Balance: drops.Units(1000)})
	}
	return g
}

func newService(t *testing.T, db database.DB, sink events.Sink, accts ...account) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Genesis = genesisFor(accts...)
	svc, err := New(context.Background(), db, cfg, sink, nil)
	require.NoError(t, err)
	return svc
}

func sign(t *testing.T, txn tx.Transaction, signers ...account) *tx.Envelope {
	t.Helper()
	env, err := tx.NewEnvelope(txn)
	require.NoError(t, err)
	for _, s := range signers {
		env.Sign(s.key)
	}
	return env
}

func commitment(secret string) string {
	c := hashlock.Commit([]byte(secret))
	return hex.EncodeToString(c[:])
}

func initiateEnv(t *testing.T, svc *Service, from, to account, secret string, amount drops.Drops) (*tx.Envelope, string) {
	t.Helper()
	acct, err := svc.Account(context.Background(), from.address)
	require.NoError(t, err)
	txn := swap.NewInitiate(from.address, to.address, commitment(secret), amount, 500)
	txn.SetSequence(acct.Sequence)
	return sign(t, txn, from), swap.ID(from.key.AccountID(), hashlock.Commit([]byte(secret)))
}

func TestGenesis(t *testing.T) {
	alice, bob := newAccount(t, "alice"), newAccount(t, "bob")
	svc := newService(t, memory.NewDB(), nil, alice, bob)

	assert.Equal(t, uint64(100), svc.CurrentTick())
	a, err := svc.Account(context.Background(), alice.address)
	require.NoError(t, err)
	assert.Equal(t, drops.Units(1000), a.Balance)
	assert.Equal(t, tx.FirstSequence, a.Sequence)

	_, err = svc.Account(context.Background(), newAccount(t, "carol").address)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGenesisRejectsDuplicates(t *testing.T) {
	alice := newAccount(t, "alice")
	cfg := DefaultConfig()
	cfg.Genesis = genesisFor(alice, alice)
	_, err := New(context.Background(), memory.NewDB(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestGenesisRejectsOutOfRange(t *testing.T) {
	alice := newAccount(t, "alice")

	cfg := DefaultConfig()
	cfg.Genesis = genesisFor(alice)
	cfg.Genesis.Accounts[0].Balance = drops.MaxDrops + 1
	_, err := New(context.Background(), memory.NewDB(), cfg, nil, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Genesis = genesisFor(alice)
	cfg.Genesis.Tick = timelock.MaxTick + 1
	_, err = New(context.Background(), memory.NewDB(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	alice := newAccount(t, "alice")
	db := memory.NewDB()

	svc := newService(t, db, nil, alice)
	tick, err := svc.Advance(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(105), tick)

	// A second open must not rewrite genesis or reset the clock.
	cfg := DefaultConfig()
	cfg.Genesis = GenesisConfig{Tick: 1}
	reopened, err := New(ctx, db, cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(105), reopened.CurrentTick())
	_, err = reopened.Account(ctx, alice.address)
	assert.NoError(t, err)
}

func TestAdvance(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.NewDB(), nil)

	closed, err := svc.AcceptLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), closed)
	assert.Equal(t, uint64(101), svc.CurrentTick())

	_, err = svc.Advance(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidAdvance)

	_, err = svc.Advance(ctx, ^uint64(0))
	assert.ErrorIs(t, err, ErrTickOverflow)
	_, err = svc.Advance(ctx, timelock.MaxTick-100)
	assert.ErrorIs(t, err, ErrTickOverflow)
	assert.Equal(t, uint64(101), svc.CurrentTick())
	assert.Equal(t, uint64(101), svc.CurrentTick())
}

func TestSubmitPublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	sink := events.NewMockSink(ctrl)

	alice, bob := newAccount(t, "alice"), newAccount(t, "bob")
	svc := newService(t, memory.NewDB(), sink, alice, bob)

	env, id := initiateEnv(t, svc, alice, bob, "s", drops.Units(10))

	gomock.InOrder(
		sink.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, ev events.Event) error {
			assert.Equal(t, events.TypeInitiated, ev.Type)
			assert.Equal(t, uint64(100), ev.Tick)
			return nil
		}),
		sink.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, ev events.Event) error {
			assert.Equal(t, events.TypeRedeemed, ev.Type)
			assert.Equal(t, "73", ev.Secret)
			return errors.New("sink down")
		}),
	)

	res := svc.Submit(ctx, env)
	require.Equal(t, tx.TesSUCCESS, res.Result, res.Message)

	record, err := svc.Swap(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), record.ExpiryTick)

	res = svc.Submit(ctx, sign(t, swap.NewRedeem("", id, bob.address, "73")))
	require.Equal(t, tx.TesSUCCESS, res.Result, res.Message)

	_, err = svc.Swap(ctx, id)
	assert.ErrorIs(t, err, ErrSwapNotFound)

	b, err := svc.Account(ctx, bob.address)
	require.NoError(t, err)
	assert.Equal(t, drops.Units(1000)+drops.Units(10)+svc.Config().SwapDeposit, b.Balance)

	info := svc.GetServerInfo()
	assert.Equal(t, uint64(2), info.Applied)
	assert.Zero(t, svc.locks.size())
}

func TestRejectedPublishesNothing(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	sink := events.NewMockSink(ctrl)

	alice, bob := newAccount(t, "alice"), newAccount(t, "bob")
	svc := newService(t, memory.NewDB(), sink, alice, bob)

	env, _ := initiateEnv(t, svc, alice, bob, "s", drops.Units(5000))
	res := svc.Submit(ctx, env)
	assert.Equal(t, tx.TecUNFUNDED, res.Result)
	assert.Equal(t, uint64(1), svc.GetServerInfo().Rejected)
}

// failingDB fails every batch.
type failingDB struct {
	*memory.DB
}

func (f failingDB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	return errors.New("disk full")
}

func TestCommitFailure(t *testing.T) {
	ctx := context.Background()
	alice, bob := newAccount(t, "alice"), newAccount(t, "bob")

	mem := memory.NewDB()
	newService(t, mem, nil, alice, bob)

	ctrl := gomock.NewController(t)
	sink := events.NewMockSink(ctrl)
	svc, err := New(ctx, failingDB{mem}, DefaultConfig(), sink, nil)
	require.NoError(t, err)

	env, id := initiateEnv(t, svc, alice, bob, "s", drops.Units(10))
	res := svc.Submit(ctx, env)
	assert.Equal(t, tx.TefINTERNAL, res.Result)
	assert.False(t, res.Applied)

	_, err = svc.Swap(ctx, id)
	assert.ErrorIs(t, err, ErrSwapNotFound)
	a, err := svc.Account(ctx, alice.address)
	require.NoError(t, err)
	assert.Equal(t, drops.Units(1000), a.Balance)
	assert.Equal(t, tx.FirstSequence, a.Sequence)
}

func TestSubmitBatchDisjoint(t *testing.T) {
	ctx := context.Background()
	bob := newAccount(t, "bob")
	initiators := make([]account, 16)
	for i := range initiators {
		initiators[i] = newAccount(t, fmt.Sprintf("initiator-%d", i))
	}
	svc := newService(t, memory.NewDB(), nil, append(initiators, bob)...)

	envs := make([]*tx.Envelope, len(initiators))
	ids := make([]string, len(initiators))
	for i, a := range initiators {
		envs[i], ids[i] = initiateEnv(t, svc, a, bob, "shared", drops.Units(1))
	}
	for _, res := range svc.SubmitBatch(ctx, envs) {
		assert.Equal(t, tx.TesSUCCESS, res.Result, res.Message)
	}
	for _, id := range ids {
		_, err := svc.Swap(ctx, id)
		assert.NoError(t, err)
	}
}

func TestCompetingTerminals(t *testing.T) {
	ctx := context.Background()
	alice, bob := newAccount(t, "alice"), newAccount(t, "bob")
	recorder := &events.Recorder{}
	svc := newService(t, memory.NewDB(), recorder, alice, bob)

	env, id := initiateEnv(t, svc, alice, bob, "s", drops.Units(10))
	require.Equal(t, tx.TesSUCCESS, svc.Submit(ctx, env).Result)
	_, err := svc.Advance(ctx, 500)
	require.NoError(t, err)

	// Both transitions are valid at tick 600; only one may close the swap.
	envs := []*tx.Envelope{
		sign(t, swap.NewRedeem("", id, bob.address, "73")),
		sign(t, swap.NewRefund("", id, alice.address)),
		sign(t, swap.NewInstantRefund("", id, alice.address, bob.address), bob),
	}

	var wg sync.WaitGroup
	results := make([]tx.ApplyResult, len(envs))
	for i, env := range envs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.Submit(ctx, env)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, res := range results {
		switch res.Result {
		case tx.TesSUCCESS:
			succeeded++
		default:
			assert.Equal(t, tx.TecNO_TARGET, res.Result)
		}
	}
	assert.Equal(t, 1, succeeded)

	terminal := 0
	for _, ev := range recorder.Events() {
		if ev.Terminal() {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)

	a, err := svc.Account(ctx, alice.address)
	require.NoError(t, err)
	b, err := svc.Account(ctx, bob.address)
	require.NoError(t, err)
	assert.Equal(t, drops.Units(2000), a.Balance+b.Balance)
}
