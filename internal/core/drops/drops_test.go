package drops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	sum, err := Drops(1).Add(2)
	require.NoError(t, err)
	assert.Equal(t, Drops(3), sum)

	_, err = Drops(math.MaxUint64).Add(1)
	require.ErrorIs(t, err, ErrOverflow)

	sum, err = (MaxDrops - 1).Add(1)
	require.NoError(t, err)
	assert.Equal(t, MaxDrops, sum)
	_, err = MaxDrops.Add(1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSub(t *testing.T) {
	diff, err := Drops(5).Sub(5)
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = Drops(1).Sub(2)
	require.ErrorIs(t, err, ErrUnderflow)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1000000000", Units(1000).String())
	assert.Equal(t, "1000.000000", Units(1000).Decimal())
	assert.Equal(t, "0.000042", Drops(42).Decimal())
}

func TestParse(t *testing.T) {
	v, err := Parse("1000000000")
	require.NoError(t, err)
	assert.Equal(t, Units(1000), v)

	_, err = Parse("-1")
	require.Error(t, err)
	_, err = Parse("1.5")
	require.Error(t, err)
}
