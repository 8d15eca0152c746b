// Package timelock compares logical ledger ticks against expiry deadlines.
//
// Expiry is inclusive: a deadline of N is expired at tick N and at every
// later tick.
package timelock

import (
	"errors"
	"fmt"
	"math"
)

// MaxTick is the largest tick. Ticks fit a signed 64-bit SQL column.
const MaxTick uint64 = math.MaxInt64

// ErrExpiryOverflow is returned when a deadline is beyond MaxTick.
var ErrExpiryOverflow = errors.New("expiry tick overflows")

// Expired reports whether expiryTick has been reached at currentTick.
func Expired(expiryTick, currentTick uint64) bool {
	return currentTick >= expiryTick
}

// ExpiryTick returns the absolute deadline offset ticks after currentTick.
func ExpiryTick(currentTick, offset uint64) (uint64, error) {
	if currentTick > MaxTick || offset > MaxTick-currentTick {
		return 0, fmt.Errorf("%w: %d + %d", ErrExpiryOverflow, currentTick, offset)
	}
	return currentTick + offset, nil
}

// Remaining returns the ticks left until expiryTick, zero once expired.
func Remaining(expiryTick, currentTick uint64) uint64 {
	if Expired(expiryTick, currentTick) {
		return 0
	}
	return expiryTick - currentTick
}
