// Package drops implements amounts of the native asset. One unit of the
// native asset is one million drops.
package drops

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Drops is an amount of the native asset in its smallest unit.
type Drops uint64

// PerUnit is the number of drops in one whole unit.
const PerUnit Drops = 1_000_000

// MaxDrops is the largest amount the ledger holds. Amounts fit a signed
// 64-bit SQL column.
const MaxDrops Drops = math.MaxInt64

var (
	// ErrOverflow is returned when an addition exceeds MaxDrops.
	ErrOverflow = errors.New("amount overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("amount underflow")
)

// Units returns n whole units expressed in drops.
func Units(n uint64) Drops {
	return Drops(n) * PerUnit
}

// Add returns x + y or ErrOverflow.
func (x Drops) Add(y Drops) (Drops, error) {
	sum, carry := bits.Add64(uint64(x), uint64(y), 0)
	if carry != 0 || Drops(sum) > MaxDrops {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, x, y)
	}
	return Drops(sum), nil
}

// Sub returns x - y or ErrUnderflow.
func (x Drops) Sub(y Drops) (Drops, error) {
	if y > x {
		return 0, fmt.Errorf("%w: %d - %d", ErrUnderflow, x, y)
	}
	return x - y, nil
}

// IsZero reports whether the amount is zero.
func (x Drops) IsZero() bool {
	return x == 0
}

// String returns the amount in drops.
func (x Drops) String() string {
	return strconv.FormatUint(uint64(x), 10)
}

// Decimal returns the amount in whole units with six decimals.
func (x Drops) Decimal() string {
	return fmt.Sprintf("%d.%06d", x/PerUnit, x%PerUnit)
}

// Parse parses a decimal drops string.
func Parse(s string) (Drops, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Drops(v), nil
}
