package tx

import (
	"testing"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/crypto"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/stretchr/testify/require"
)

const typeTestTransfer Type = 900

func init() {
	typeNames[typeTestTransfer] = "TestTransfer"
	Register(typeTestTransfer, func() Transaction {
		return &testTransfer{BaseTx: *NewBaseTx(typeTestTransfer, "")}
	})
}

// testTransfer moves drops between two accounts.
type testTransfer struct {
	BaseTx
	Destination string      `json:"Destination"`
	Amount      drops.Drops `json:"Amount"`
}

func (t *testTransfer) Validate() error {
	if t.Account == "" {
		return Errorf(TemMALFORMED, "Account is required")
	}
	if t.Amount.IsZero() {
		return Errorf(TemBAD_AMOUNT, "Amount must be positive")
	}
	if !addresscodec.IsValidAddress(t.Destination) {
		return Errorf(TemMALFORMED, "invalid Destination")
	}
	return nil
}

func (t *testTransfer) Touches() []keylet.Keylet {
	return t.AccountKeys()
}

func (t *testTransfer) Apply(ctx *ApplyContext) Result {
	dest, err := addresscodec.DecodeAddress(t.Destination)
	if err != nil {
		return TemMALFORMED
	}
	if r := ctx.Debit(ctx.AccountID, t.Amount); r != TesSUCCESS {
		return r
	}
	if r := ctx.Credit(dest, t.Amount); r != TesSUCCESS {
		return r
	}
	ctx.Emit(events.Event{Type: "transfer", Initiator: t.Account, Payout: t.Destination, Amount: t.Amount})
	return TesSUCCESS
}

type testAccount struct {
	key     *crypto.KeyPair
	id      [20]byte
	address string
}

func newTestAccount(t *testing.T, name string) testAccount {
	t.Helper()
	kp, err := crypto.NewKeyPair(crypto.KeyTypeEd25519, []byte(name))
	require.NoError(t, err)
	id := kp.AccountID()
	return testAccount{key: kp, id: id, address: addresscodec.EncodeAccountID(id)}
}

func fund(t *testing.T, v LedgerView, id [20]byte, balance drops.Drops) {
	t.Helper()
	data, err := entry.Encode(&entry.AccountRoot{Account: id, Balance: balance, Sequence: FirstSequence})
	require.NoError(t, err)
	require.NoError(t, v.Insert(keylet.Account(id), data))
}

func readAccount(t *testing.T, v LedgerView, id [20]byte) *entry.AccountRoot {
	t.Helper()
	data, err := v.Read(keylet.Account(id))
	require.NoError(t, err)
	if data == nil {
		return nil
	}
	a, err := entry.DecodeAccountRoot(data)
	require.NoError(t, err)
	return a
}

func transfer(from, to testAccount, amount drops.Drops, seq uint32) *testTransfer {
	t := &testTransfer{
		BaseTx:      *NewBaseTx(typeTestTransfer, from.address),
		Destination: to.address,
		Amount:      amount,
	}
	t.SetSequence(seq)
	return t
}

func envelope(t *testing.T, txn Transaction, signers ...testAccount) *Envelope {
	t.Helper()
	env, err := NewEnvelope(txn)
	require.NoError(t, err)
	for _, s := range signers {
		env.Sign(s.key)
	}
	return env
}
