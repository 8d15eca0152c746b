package testing

import "github.com/LeJamon/goswapd/internal/core/drops"

// DefaultFunding is the genesis balance of accounts passed to NewTestEnv.
var DefaultFunding = Units(10_000)

// Units returns n whole units in drops.
func Units(n uint64) drops.Drops {
	return drops.Units(n)
}

// Drops returns n drops.
func Drops(n uint64) drops.Drops {
	return drops.Drops(n)
}
