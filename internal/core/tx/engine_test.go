package tx

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(view LedgerView) *Engine {
	return NewEngine(view, EngineConfig{Tick: 42}, nil)
}

func TestEngineApplySuccess(t *testing.T) {
	view := NewMemoryView()
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")
	fund(t, view, alice.id, 1000)

	env := envelope(t, transfer(alice, bob, 300, 1), alice)
	res := newTestEngine(view).Apply(env)

	require.Equal(t, TesSUCCESS, res.Result, res.Message)
	assert.True(t, res.Applied)
	assert.NoError(t, res.Err())
	assert.Equal(t, env.Hash(), res.TxHash)

	a := readAccount(t, view, alice.id)
	assert.Equal(t, drops.Drops(700), a.Balance)
	assert.Equal(t, uint32(2), a.Sequence)

	b := readAccount(t, view, bob.id)
	require.NotNil(t, b)
	assert.Equal(t, drops.Drops(300), b.Balance)
	assert.Equal(t, FirstSequence, b.Sequence)

	require.Len(t, res.Metadata.AffectedNodes, 2)
	types := []string{res.Metadata.AffectedNodes[0].NodeType, res.Metadata.AffectedNodes[1].NodeType}
	assert.ElementsMatch(t, []string{"ModifiedNode", "CreatedNode"}, types)

	require.Len(t, res.Events, 1)
	assert.Equal(t, uint64(42), res.Events[0].Tick)
	assert.Equal(t, hex.EncodeToString(res.TxHash[:]), res.Events[0].TxHash)
}

func TestEngineSequence(t *testing.T) {
	view := NewMemoryView()
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")
	fund(t, view, alice.id, 1000)
	engine := newTestEngine(view)

	env := envelope(t, transfer(alice, bob, 100, 1), alice)
	require.Equal(t, TesSUCCESS, engine.Apply(env).Result)

	// Replaying the same envelope is rejected.
	res := engine.Apply(env)
	assert.Equal(t, TefPAST_SEQ, res.Result)
	assert.True(t, errors.Is(res.Err(), ErrBadSequence))

	res = engine.Apply(envelope(t, transfer(alice, bob, 100, 5), alice))
	assert.Equal(t, TerPRE_SEQ, res.Result)

	assert.Equal(t, drops.Drops(900), readAccount(t, view, alice.id).Balance)
}

func TestEngineRejections(t *testing.T) {
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")

	tests := []struct {
		name   string
		env    func(t *testing.T) *Envelope
		result Result
	}{
		{
			name:   "unsigned",
			env:    func(t *testing.T) *Envelope { return envelope(t, transfer(alice, bob, 1, 1)) },
			result: TefBAD_AUTH,
		},
		{
			name:   "signed by someone else",
			env:    func(t *testing.T) *Envelope { return envelope(t, transfer(alice, bob, 1, 1), bob) },
			result: TefBAD_AUTH,
		},
		{
			name: "tampered after signing",
			env: func(t *testing.T) *Envelope {
				env := envelope(t, transfer(alice, bob, 1, 1), alice)
				tampered, err := json.Marshal(transfer(alice, bob, 999, 1))
				require.NoError(t, err)
				env.Tx = tampered
				return env
			},
			result: TefBAD_SIGNATURE,
		},
		{
			name:   "insufficient balance",
			env:    func(t *testing.T) *Envelope { return envelope(t, transfer(alice, bob, 5000, 1), alice) },
			result: TecUNFUNDED,
		},
		{
			name:   "zero amount",
			env:    func(t *testing.T) *Envelope { return envelope(t, transfer(alice, bob, 0, 1), alice) },
			result: TemBAD_AMOUNT,
		},
		{
			name: "missing sequence",
			env: func(t *testing.T) *Envelope {
				txn := transfer(alice, bob, 1, 1)
				txn.Sequence = nil
				return envelope(t, txn, alice)
			},
			result: TemBAD_SEQUENCE,
		},
		{
			name:   "unknown account",
			env:    func(t *testing.T) *Envelope { return envelope(t, transfer(bob, alice, 1, 1), bob) },
			result: TerNO_ACCOUNT,
		},
		{
			name:   "unknown type",
			env:    func(t *testing.T) *Envelope { return &Envelope{Tx: []byte(`{"TransactionType":"Nope"}`)} },
			result: TemUNKNOWN,
		},
		{
			name:   "not json",
			env:    func(t *testing.T) *Envelope { return &Envelope{Tx: []byte(`{`)} },
			result: TemMALFORMED,
		},
		{
			name:   "empty",
			env:    func(t *testing.T) *Envelope { return &Envelope{} },
			result: TemMALFORMED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewMemoryView()
			fund(t, view, alice.id, 1000)

			res := newTestEngine(view).Apply(tt.env(t))
			assert.Equal(t, tt.result, res.Result, res.Message)
			assert.False(t, res.Applied)
			assert.Error(t, res.Err())
			assert.Empty(t, res.Events)

			// Nothing but the funded account exists and its state is untouched.
			assert.Equal(t, 1, view.Len())
			a := readAccount(t, view, alice.id)
			assert.Equal(t, drops.Drops(1000), a.Balance)
			assert.Equal(t, FirstSequence, a.Sequence)
		})
	}
}

func TestResultError(t *testing.T) {
	err := TefBAD_AUTH.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, TefBAD_AUTH, ResultOf(err, TemMALFORMED))
	assert.Equal(t, "tefBAD_AUTH: A required signature is missing.", err.Error())

	assert.NoError(t, TesSUCCESS.Err())
	assert.Equal(t, TesSUCCESS, ResultOf(nil, TefINTERNAL))
	assert.Equal(t, TefINTERNAL, ResultOf(errors.New("plain"), TefINTERNAL))

	detailed := Errorf(TemBAD_AMOUNT, "amount %d", 0)
	assert.Equal(t, "temBAD_AMOUNT: amount 0", detailed.Error())
	assert.Equal(t, TemBAD_AMOUNT, ResultOf(detailed, TemMALFORMED))
}

func TestResultClassification(t *testing.T) {
	assert.True(t, TesSUCCESS.IsSuccess())
	assert.True(t, TecDUPLICATE.IsTec())
	assert.True(t, TefBAD_AUTH.IsTef())
	assert.True(t, TemBAD_AMOUNT.IsTem())
	assert.True(t, TerPRE_SEQ.IsTer())
	assert.False(t, TecDUPLICATE.IsSuccess())

	r, ok := ResultFromName("tecTOO_SOON")
	require.True(t, ok)
	assert.Equal(t, TecTOO_SOON, r)
	_, ok = ResultFromName("tecNOPE")
	assert.False(t, ok)
	assert.Equal(t, "Unknown(12345)", Result(12345).String())
}
