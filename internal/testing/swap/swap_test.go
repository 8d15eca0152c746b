package swap_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/crypto"
	"github.com/LeJamon/goswapd/internal/events"
	jtx "github.com/LeJamon/goswapd/internal/testing"
	"github.com/LeJamon/goswapd/internal/testing/swap"
)

// deposit is the storage deposit of the default service configuration.
var deposit = jtx.Units(2)

func TestAtomicSwap(t *testing.T) {
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccountWithKeyType("bob", crypto.KeyTypeEd25519)
	env := jtx.NewTestEnv(t, alice, bob)

	// Alice picks the secret and locks first with the longer expiry.
	secret := swap.NewSecret("atomic")
	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(100)).ExpiresIn(1000).Build()))
	aliceSwap := swap.ID(alice, secret)

	// Bob only sees the commitment and locks his side with a shorter expiry.
	commitment := env.Swap(aliceSwap).Commitment
	jtx.RequireTxSuccess(t, env.Submit(
		swap.InitiateWithCommitment(bob, alice, hex.EncodeToString(commitment[:]), jtx.Units(50)).ExpiresIn(500).Build()))
	bobSwap := swap.ID(bob, secret)
	require.NotEqual(t, aliceSwap, bobSwap)

	// Alice redeems Bob's swap, revealing the secret.
	res := env.SubmitUnsigned(swap.Redeem(bobSwap, alice, secret).Build())
	jtx.RequireTxSuccess(t, res)
	require.Len(t, res.Events, 1)
	revealed, err := hex.DecodeString(res.Events[0].Secret)
	require.NoError(t, err)

	// Bob learns the secret from the notification and redeems Alice's swap.
	jtx.RequireTxSuccess(t, env.SubmitUnsigned(swap.Redeem(aliceSwap, bob, revealed).Build()))

	jtx.RequireSwapNotExists(t, env, aliceSwap)
	jtx.RequireSwapNotExists(t, env, bobSwap)
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding-jtx.Units(100)+jtx.Units(50))
	jtx.RequireBalance(t, env, bob, jtx.DefaultFunding-jtx.Units(50)+jtx.Units(100))
	jtx.RequireEventTypes(t, env,
		events.TypeInitiated, events.TypeInitiated, events.TypeRedeemed, events.TypeRedeemed)
}

func TestRefundAfterExpiry(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("refund")

	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(10)).ExpiresIn(5).Build()))
	id := swap.ID(alice, secret)
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding-jtx.Units(10)-deposit)

	for i := 0; i < 4; i++ {
		env.Close()
		jtx.RequireTxClaimed(t, env.SubmitUnsigned(swap.Refund(id, alice).Build()), tx.TecTOO_SOON)
	}

	// The swap becomes refundable exactly at its expiry tick.
	env.Close()
	assert.Equal(t, jtx.GenesisTick+5, env.Tick())
	jtx.RequireTxSuccess(t, env.SubmitUnsigned(swap.Refund(id, alice).Build()))
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding)
	jtx.RequireSwapNotExists(t, env, id)

	// The redeemer can no longer claim.
	jtx.RequireTxClaimed(t, env.SubmitUnsigned(swap.Redeem(id, bob, secret).Build()), tx.TecNO_TARGET)
}

func TestRedeemAfterExpiryBeforeRefund(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("late")

	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(10)).ExpiresIn(5).Build()))
	env.Advance(10)

	// Expiry enables refund but does not disable redemption.
	jtx.RequireTxSuccess(t, env.SubmitUnsigned(swap.Redeem(swap.ID(alice, secret), bob, secret).Build()))
	jtx.RequireBalance(t, env, bob, jtx.DefaultFunding+jtx.Units(10)+deposit)
}

func TestInstantRefundCooperative(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("cancel")

	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(10)).Build()))
	id := swap.ID(alice, secret)

	// The initiator alone cannot cancel before expiry.
	jtx.RequireTxFail(t, env.SubmitUnsigned(swap.InstantRefund(id, alice, bob).Build(), alice), tx.TefBAD_AUTH)

	// Submitted by alice with bob's co-signature.
	res := env.Submit(swap.InstantRefund(id, alice, bob).From(alice).Build(), bob)
	jtx.RequireTxSuccess(t, res)
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding)
	jtx.RequireSwapNotExists(t, env, id)
	require.Len(t, res.Events, 1)
	assert.Equal(t, alice.Address, res.Events[0].Payout)
}

func TestCommitmentReuse(t *testing.T) {
	alice, bob, carol := jtx.NewAccount("alice"), jtx.NewAccount("bob"), jtx.NewAccount("carol")
	env := jtx.NewTestEnv(t, alice, bob, carol)
	secret := swap.NewSecret("shared")

	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(1)).Build()))
	jtx.RequireTxClaimed(t, env.Submit(swap.Initiate(alice, carol, secret, jtx.Units(1)).Build()), tx.TecDUPLICATE)

	// Swaps are keyed by initiator, so another initiator may reuse it.
	jtx.RequireTxSuccess(t, env.Submit(swap.Initiate(carol, bob, secret, jtx.Units(1)).Build()))
	jtx.RequireSwapExists(t, env, swap.ID(alice, secret))
	jtx.RequireSwapExists(t, env, swap.ID(carol, secret))

	// Revealing the secret for one swap does not touch the other.
	jtx.RequireTxSuccess(t, env.SubmitUnsigned(swap.Redeem(swap.ID(alice, secret), bob, secret).Build()))
	jtx.RequireSwapExists(t, env, swap.ID(carol, secret))
}

func TestInitiateRejections(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	stranger := jtx.NewAccount("stranger")
	env := jtx.NewTestEnv(t, alice, bob)
	env.Register(stranger)
	secret := swap.NewSecret("reject")
	entries := env.EntryCount()

	tests := []struct {
		name string
		txn  tx.Transaction
		want tx.Result
	}{
		{"zero amount", swap.Initiate(alice, bob, secret, 0).Build(), tx.TemBAD_AMOUNT},
		{"self swap", swap.Initiate(alice, alice, secret, jtx.Units(1)).Build(), tx.TemDST_IS_SRC},
		{"zero expiry", swap.Initiate(alice, bob, secret, jtx.Units(1)).ExpiresIn(0).Build(), tx.TemBAD_EXPIRATION},
		{"bad commitment", swap.Initiate(alice, bob, secret, jtx.Units(1)).Commitment("abcd").Build(), tx.TemBAD_SECRET},
		{"unfunded", swap.Initiate(alice, bob, secret, jtx.DefaultFunding).Build(), tx.TecUNFUNDED},
		{"unknown account", swap.Initiate(stranger, bob, secret, jtx.Units(1)).Sequence(tx.FirstSequence).Build(), tx.TerNO_ACCOUNT},
		{"future sequence", swap.Initiate(alice, bob, secret, jtx.Units(1)).Sequence(tx.FirstSequence + 5).Build(), tx.TerPRE_SEQ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, env.Submit(tt.txn), tt.want)
			assert.Equal(t, entries, env.EntryCount())
		})
	}

	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding)
	assert.Equal(t, tx.FirstSequence, env.Seq(alice))
	jtx.RequireEventTypes(t, env)
}

func TestReplayRejected(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("replay")

	txn := swap.Initiate(alice, bob, secret, jtx.Units(1)).Sequence(env.Seq(alice)).Build()
	envelope, err := tx.NewEnvelope(txn)
	require.NoError(t, err)
	envelope.Sign(alice.Key)

	jtx.RequireTxSuccess(t, env.SubmitEnvelope(envelope))
	jtx.RequireTxFail(t, env.SubmitEnvelope(envelope), tx.TefPAST_SEQ)
	assert.Equal(t, tx.FirstSequence+1, env.Seq(alice))
}

func TestTamperedEnvelope(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("tamper")

	txn := swap.Initiate(alice, bob, secret, jtx.Units(1)).Sequence(env.Seq(alice)).Build()
	envelope, err := tx.NewEnvelope(txn)
	require.NoError(t, err)
	envelope.Sign(alice.Key)

	// Re-encode with a larger amount under the original signature.
	bigger := swap.Initiate(alice, bob, secret, jtx.Units(2)).Sequence(env.Seq(alice)).Build()
	forged, err := tx.NewEnvelope(bigger)
	require.NoError(t, err)
	forged.Signatures = envelope.Signatures

	jtx.RequireTxFail(t, env.SubmitEnvelope(forged), tx.TefBAD_SIGNATURE)
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding)
}

func TestEventsCarrySwapFields(t *testing.T) {
	alice, bob := jtx.NewAccount("alice"), jtx.NewAccount("bob")
	env := jtx.NewTestEnv(t, alice, bob)
	secret := swap.NewSecret("fields")

	res := env.Submit(swap.Initiate(alice, bob, secret, jtx.Units(7)).ExpiresIn(42).Build())
	jtx.RequireTxSuccess(t, res)
	require.Len(t, res.Events, 1)

	ev := res.Events[0]
	commitment := hashlock.Commit(secret)
	assert.Equal(t, events.TypeInitiated, ev.Type)
	assert.Equal(t, swap.ID(alice, secret), ev.SwapID)
	assert.Equal(t, res.TxHash, ev.TxHash)
	assert.Equal(t, alice.Address, ev.Initiator)
	assert.Equal(t, bob.Address, ev.Redeemer)
	assert.Equal(t, hex.EncodeToString(commitment[:]), ev.Commitment)
	assert.Equal(t, jtx.Units(7), ev.Amount)
	assert.Equal(t, deposit, ev.Deposit)
	assert.Equal(t, jtx.GenesisTick+42, ev.ExpiryTick)
	assert.Equal(t, uint64(42), ev.ExpiresIn)
	assert.Equal(t, env.Events(), res.Events)
}
