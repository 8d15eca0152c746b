package entry

import (
	"testing"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSwap() *Swap {
	s := &Swap{
		Amount:      drops.Units(10),
		Deposit:     drops.Drops(2_000_000),
		ExpiryTick:  600,
		CreatedTick: 100,
	}
	s.Initiator[0] = 0x01
	s.Redeemer[0] = 0x02
	s.Commitment[31] = 0xff
	s.CreatedTxID[0] = 0xaa
	return s
}

func TestEncodeDecodeSwap(t *testing.T) {
	in := sampleSwap()
	data, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x68}, data[:2])

	out, err := DecodeSwap(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	custody, err := out.Custody()
	require.NoError(t, err)
	assert.Equal(t, drops.Drops(12_000_000), custody)
}

func TestEncodeDecodeAccountRoot(t *testing.T) {
	in := &AccountRoot{Balance: drops.Units(1000), Sequence: 7}
	in.Account[19] = 0x42

	data, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61}, data[:2])

	e, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeAccountRoot, e.Type())
	assert.Equal(t, in, e)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode([]byte{0x00, 0x01, 0x80})
	assert.ErrorIs(t, err, ErrUnknownType)

	acct := &AccountRoot{}
	acct.Account[0] = 1
	data, err := Encode(acct)
	require.NoError(t, err)
	_, err = DecodeSwap(data)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSwapValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Swap)
		errMsg string
	}{
		{"valid", func(*Swap) {}, ""},
		{"no initiator", func(s *Swap) { s.Initiator = [20]byte{} }, "initiator is required"},
		{"no redeemer", func(s *Swap) { s.Redeemer = [20]byte{} }, "redeemer is required"},
		{"self swap", func(s *Swap) { s.Redeemer = s.Initiator }, "must differ"},
		{"zero amount", func(s *Swap) { s.Amount = 0 }, "amount must be positive"},
		{"custody overflow", func(s *Swap) { s.Deposit = ^drops.Drops(0) }, "overflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSwap()
			tt.mutate(s)
			err := s.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			_, err = Encode(s)
			assert.Error(t, err)
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "AccountRoot", TypeAccountRoot.String())
	assert.Equal(t, "Swap", TypeSwap.String())
	assert.Equal(t, "Unknown(0x1)", Type(1).String())
}
