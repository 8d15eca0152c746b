package service

import (
	"context"
	"errors"
	"fmt"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/storage/database"
)

// GenesisTick is the first tick of a fresh ledger unless configured otherwise.
const GenesisTick uint64 = 1

// GenesisAccount is an account funded when the ledger is created.
type GenesisAccount struct {
	Address string
	Balance drops.Drops
}

// GenesisConfig describes the initial ledger state.
type GenesisConfig struct {
	// Tick is the initial clock value; zero selects GenesisTick
	Tick     uint64
	Accounts []GenesisAccount
}

// open resumes the stored clock or, on an empty database, writes genesis.
func (s *Service) open(ctx context.Context) error {
	data, err := s.db.Read(ctx, tickKey)
	switch {
	case err == nil:
		tick, err := decodeTick(data)
		if err != nil {
			return err
		}
		s.tick.Store(tick)
		s.logger.Info("ledger resumed", "tick", tick)
		return nil
	case !errors.Is(err, database.ErrKeyNotFound):
		return fmt.Errorf("failed to read tick: %w", err)
	}

	return s.writeGenesis(ctx)
}

func (s *Service) writeGenesis(ctx context.Context) error {
	g := s.config.Genesis
	tick := g.Tick
	if tick == 0 {
		tick = GenesisTick
	}
	if tick > timelock.MaxTick {
		return fmt.Errorf("genesis tick %d exceeds %d", tick, timelock.MaxTick)
	}

	seen := make(map[[20]byte]bool, len(g.Accounts))
	ops := make([]database.BatchOperation, 0, len(g.Accounts)+1)
	for _, a := range g.Accounts {
		id, err := addresscodec.DecodeAddress(a.Address)
		if err != nil {
			return fmt.Errorf("genesis account %q: %w", a.Address, err)
		}
		if seen[id] {
			return fmt.Errorf("genesis account %q listed twice", a.Address)
		}
		seen[id] = true
		if a.Balance > drops.MaxDrops {
			return fmt.Errorf("genesis account %q: balance exceeds %d", a.Address, drops.MaxDrops)
		}

		data, err := entry.Encode(&entry.AccountRoot{Account: id, Balance: a.Balance, Sequence: tx.FirstSequence})
		if err != nil {
			return err
		}
		k := keylet.Account(id)
		ops = append(ops, database.Put(k.Key[:], data))
	}
	ops = append(ops, database.Put(tickKey, encodeTick(tick)))

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("failed to write genesis: %w", err)
	}
	s.tick.Store(tick)
	s.logger.Info("genesis ledger created", "tick", tick, "accounts", len(g.Accounts))
	return nil
}
