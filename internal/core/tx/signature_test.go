package tx

import (
	"encoding/hex"
	"testing"

	"github.com/LeJamon/goswapd/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeSignAndVerify(t *testing.T) {
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")

	secp, err := crypto.NewKeyPair(crypto.KeyTypeSecp256k1, []byte("carol"))
	require.NoError(t, err)

	env := envelope(t, transfer(alice, bob, 1, 1), alice, bob)
	env.Sign(secp)

	signers, err := env.VerifySignatures()
	require.NoError(t, err)
	assert.Len(t, signers, 3)
	assert.True(t, signers.Has(alice.id))
	assert.True(t, signers.Has(bob.id))
	assert.True(t, signers.Has(secp.AccountID()))
}

func TestEnvelopeVerifyFailures(t *testing.T) {
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")

	t.Run("duplicate signer", func(t *testing.T) {
		env := envelope(t, transfer(alice, bob, 1, 1), alice, alice)
		_, err := env.VerifySignatures()
		assert.ErrorIs(t, err, ErrDuplicateSigner)
	})

	t.Run("missing public key", func(t *testing.T) {
		env := envelope(t, transfer(alice, bob, 1, 1), alice)
		env.Signatures[0].PublicKey = ""
		_, err := env.VerifySignatures()
		assert.ErrorIs(t, err, ErrMissingPublicKey)
	})

	t.Run("unknown key type", func(t *testing.T) {
		env := envelope(t, transfer(alice, bob, 1, 1), alice)
		env.Signatures[0].PublicKey = hex.EncodeToString(make([]byte, 33))
		_, err := env.VerifySignatures()
		assert.ErrorIs(t, err, ErrUnknownKeyType)
	})

	t.Run("signature from another key", func(t *testing.T) {
		env := envelope(t, transfer(alice, bob, 1, 1), alice)
		env.Signatures[0].PublicKey = hex.EncodeToString(bob.key.PublicKey())
		_, err := env.VerifySignatures()
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("bad hex", func(t *testing.T) {
		env := envelope(t, transfer(alice, bob, 1, 1), alice)
		env.Signatures[0].Signature = "zz"
		_, err := env.VerifySignatures()
		assert.Error(t, err)
	})
}

func TestEnvelopeHashCoversTxOnly(t *testing.T) {
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")

	unsigned := envelope(t, transfer(alice, bob, 1, 1))
	signed := envelope(t, transfer(alice, bob, 1, 1), alice)
	assert.Equal(t, unsigned.Hash(), signed.Hash())

	other := envelope(t, transfer(alice, bob, 2, 1))
	assert.NotEqual(t, unsigned.Hash(), other.Hash())
}

func TestFromJSONRoundTrip(t *testing.T) {
	alice := newTestAccount(t, "alice")
	bob := newTestAccount(t, "bob")

	env := envelope(t, transfer(alice, bob, 7, 3))
	decoded, err := env.Decode()
	require.NoError(t, err)

	got, ok := decoded.(*testTransfer)
	require.True(t, ok)
	assert.Equal(t, typeTestTransfer, got.TxType())
	assert.Equal(t, alice.address, got.Account)
	assert.Equal(t, uint32(3), *got.Sequence)
	assert.Contains(t, SupportedTypes(), typeTestTransfer)
}
