package timelock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpired(t *testing.T) {
	tests := []struct {
		name    string
		expiry  uint64
		current uint64
		want    bool
	}{
		{"well before", 600, 100, false},
		{"one tick before", 600, 599, false},
		{"exactly at expiry", 600, 600, true},
		{"after expiry", 600, 601, true},
		{"zero expiry", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.expiry, tt.current))
		})
	}
}

func TestExpiryTick(t *testing.T) {
	got, err := ExpiryTick(100, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), got)

	got, err = ExpiryTick(MaxTick-1, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxTick, got)

	_, err = ExpiryTick(MaxTick, 1)
	require.ErrorIs(t, err, ErrExpiryOverflow)
	_, err = ExpiryTick(100, math.MaxInt64)
	require.ErrorIs(t, err, ErrExpiryOverflow)
	_, err = ExpiryTick(math.MaxUint64, 0)
	require.ErrorIs(t, err, ErrExpiryOverflow)
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, uint64(500), Remaining(600, 100))
	assert.Equal(t, uint64(1), Remaining(600, 599))
	assert.Equal(t, uint64(0), Remaining(600, 600))
	assert.Equal(t, uint64(0), Remaining(600, 700))
}
