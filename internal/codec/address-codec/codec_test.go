package addresscodec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeAccountID(t *testing.T) {
	tests := []struct {
		name      string
		accountID string
		address   string
	}{
		{
			name:      "secp256k1 account",
			accountID: "b5f762798a53d543a014caf8b297cff8f2f937e8",
			address:   "saqYjtCXijHXxLJKUwhzJtnFRKaW1t5VWY",
		},
		{
			name:      "ed25519 account",
			accountID: "88a5a57c829f40f25ea83385bbde6c3d8b4ca082",
			address:   "sWhvQyja57QrDJZpN2vaJATQQ6NzgymkiV",
		},
		{
			name:      "zero account",
			accountID: "0000000000000000000000000000000000000000",
			address:   "sJFQ5aG1kYvXEBRq4Sdqcg2Lg4CuwtaWNi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := hex.DecodeString(tt.accountID)
			require.NoError(t, err)
			var id [20]byte
			copy(id[:], raw)

			assert.Equal(t, tt.address, EncodeAccountID(id))

			decoded, err := DecodeAddress(tt.address)
			require.NoError(t, err)
			assert.Equal(t, id, decoded)
			assert.True(t, IsValidAddress(tt.address))
		})
	}
}

func TestEncodePublicKey(t *testing.T) {
	pub, err := hex.DecodeString("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	require.NoError(t, err)
	assert.Equal(t, "saqYjtCXijHXxLJKUwhzJtnFRKaW1t5VWY", EncodePublicKey(pub))
}

func TestDecodeAddress_Errors(t *testing.T) {
	_, err := DecodeAddress("saqYjtCXijHXxLJKUwhzJtnFRKaW1t5VWZ")
	require.ErrorIs(t, err, ErrInvalidAddress, "checksum mismatch")

	_, err = DecodeAddress("not-an-address")
	require.ErrorIs(t, err, ErrInvalidAddress)

	// Same payload under a bitcoin-style version byte.
	_, err = DecodeAddress("1111111111111111111114oLvT2")
	require.Error(t, err)

	assert.False(t, IsValidAddress(""))
}
