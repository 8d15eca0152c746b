package config

import (
	"fmt"
	"time"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
)

// LedgerConfig represents the [ledger] section
type LedgerConfig struct {
	// SwapDeposit is the storage deposit, in drops, locked with every swap
	SwapDeposit uint64 `toml:"swap_deposit" mapstructure:"swap_deposit"`

	// MaxExpiryOffset bounds the expiry offset of new swaps; zero means unbounded
	MaxExpiryOffset uint64 `toml:"max_expiry_offset" mapstructure:"max_expiry_offset"`

	// CloseInterval advances the tick automatically; zero leaves the clock
	// to ledger_accept
	CloseInterval time.Duration `toml:"close_interval" mapstructure:"close_interval"`

	// BatchWorkers bounds concurrent batch application
	BatchWorkers int `toml:"batch_workers" mapstructure:"batch_workers"`
}

// Validate validates the ledger section
func (l *LedgerConfig) Validate() error {
	if l.CloseInterval < 0 {
		return fmt.Errorf("close_interval must not be negative")
	}
	if l.BatchWorkers < 0 {
		return fmt.Errorf("batch_workers must not be negative")
	}
	return nil
}

// GenesisConfig represents the [genesis] section
type GenesisConfig struct {
	Tick     uint64                 `toml:"tick" mapstructure:"tick"`
	Accounts []GenesisAccountConfig `toml:"accounts" mapstructure:"accounts"`
}

// GenesisAccountConfig is one [[genesis.accounts]] entry
type GenesisAccountConfig struct {
	Address string `toml:"address" mapstructure:"address"`
	// Balance is in drops
	Balance uint64 `toml:"balance" mapstructure:"balance"`
}

// Validate validates the genesis section
func (g *GenesisConfig) Validate() error {
	seen := make(map[string]bool, len(g.Accounts))
	var total drops.Drops
	for i, a := range g.Accounts {
		if !addresscodec.IsValidAddress(a.Address) {
			return fmt.Errorf("accounts[%d]: invalid address %q", i, a.Address)
		}
		if seen[a.Address] {
			return fmt.Errorf("accounts[%d]: duplicate address %s", i, a.Address)
		}
		seen[a.Address] = true
		sum, err := total.Add(drops.Drops(a.Balance))
		if err != nil {
			return fmt.Errorf("accounts[%d]: total balance overflows", i)
		}
		total = sum
	}
	return nil
}
