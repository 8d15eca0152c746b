package service

import (
	"context"
	"fmt"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

// read loads the entry at k under its key lock.
func (s *Service) read(ctx context.Context, k keylet.Keylet) ([]byte, error) {
	unlock := s.locks.Lock([]keylet.Keylet{k})
	defer unlock()
	return s.readEntry(ctx, k.Key)
}

// Swap returns the live swap with the given hex identifier.
func (s *Service) Swap(ctx context.Context, id string) (*entry.Swap, error) {
	k, ok := keylet.Parse(id)
	if !ok {
		return nil, fmt.Errorf("%w: invalid swap id %q", ErrSwapNotFound, id)
	}
	data, err := s.read(ctx, k)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrSwapNotFound
	}
	swap, err := entry.DecodeSwap(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSwapNotFound, err)
	}
	return swap, nil
}

// Account returns the account root for a base58 address.
func (s *Service) Account(ctx context.Context, address string) (*entry.AccountRoot, error) {
	id, err := addresscodec.DecodeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountNotFound, err)
	}
	data, err := s.read(ctx, keylet.Account(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrAccountNotFound
	}
	return entry.DecodeAccountRoot(data)
}

// ServerInfo contains basic server status information
type ServerInfo struct {
	Tick            uint64
	Applied         uint64
	Rejected        uint64
	SwapDeposit     uint64
	MaxExpiryOffset uint64
	CachedEntries   int
}

// GetServerInfo returns basic server information
func (s *Service) GetServerInfo() ServerInfo {
	return ServerInfo{
		Tick:            s.tick.Load(),
		Applied:         s.applied.Load(),
		Rejected:        s.rejected.Load(),
		SwapDeposit:     uint64(s.config.SwapDeposit),
		MaxExpiryOffset: s.config.MaxExpiryOffset,
		CachedEntries:   s.cache.Len(),
	}
}
