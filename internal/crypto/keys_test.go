package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/LeJamon/goswapd/internal/crypto/common"
)

func TestNewKeyPair_Deterministic(t *testing.T) {
	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(kt.String(), func(t *testing.T) {
			a, err := NewKeyPair(kt, []byte("alice"))
			require.NoError(t, err)
			b, err := NewKeyPair(kt, []byte("alice"))
			require.NoError(t, err)
			c, err := NewKeyPair(kt, []byte("bob"))
			require.NoError(t, err)

			assert.Equal(t, a.PublicKey(), b.PublicKey())
			assert.NotEqual(t, a.PublicKey(), c.PublicKey())
			assert.Len(t, a.PublicKey(), 33)
			assert.Equal(t, kt, PublicKeyType(a.PublicKey()))
			assert.Equal(t, CalcAccountID(a.PublicKey()), a.AccountID())
		})
	}
}

func TestNewKeyPair_Errors(t *testing.T) {
	_, err := NewKeyPair(KeyTypeEd25519, nil)
	require.ErrorIs(t, err, ErrEmptySeed)

	_, err = NewKeyPair(KeyTypeUnknown, []byte("seed"))
	require.ErrorIs(t, err, ErrUnsupportedKeyType)
}

func TestSignVerify(t *testing.T) {
	digest := common.Sha512Half([]byte("payload"))
	other := common.Sha512Half([]byte("other payload"))

	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(kt.String(), func(t *testing.T) {
			kp, _, err := GenerateKeyPair(kt)
			require.NoError(t, err)
			stranger, err := NewKeyPair(kt, []byte("stranger"))
			require.NoError(t, err)

			sig := kp.Sign(digest)
			assert.True(t, Verify(kp.PublicKey(), digest, sig))
			assert.False(t, Verify(kp.PublicKey(), other, sig), "wrong digest")
			assert.False(t, Verify(stranger.PublicKey(), digest, sig), "wrong key")

			tampered := append([]byte(nil), sig...)
			tampered[len(tampered)-1] ^= 0x01
			assert.False(t, Verify(kp.PublicKey(), digest, tampered), "tampered signature")
		})
	}
}

func TestVerify_RejectsUnknownKey(t *testing.T) {
	digest := common.Sha512Half([]byte("payload"))
	assert.False(t, Verify([]byte{0x05, 0x01}, digest, []byte{0x01}))
}

func TestParseKeyType(t *testing.T) {
	kt, err := ParseKeyType("ed25519")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeEd25519, kt)

	kt, err = ParseKeyType("secp256k1")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, kt)

	_, err = ParseKeyType("rsa")
	require.ErrorIs(t, err, ErrUnsupportedKeyType)
}
