package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/storage/database"
)

// tickKey holds the persisted clock. Entry keys are 32-byte hashes, so a
// short key cannot collide with them.
var tickKey = []byte("swapd/tick")

func encodeTick(t uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, t)
}

func decodeTick(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid tick record of %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// readEntry loads an entry through the cache. Callers hold the key's lock.
func (s *Service) readEntry(ctx context.Context, key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}
	data, err := s.db.Read(ctx, key[:])
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, data)
	return data, nil
}

type stagedEntry struct {
	data    []byte
	deleted bool
}

// stagedView collects the effects of one transaction over the stored
// state and writes them in a single batch on commit.
type stagedView struct {
	ctx     context.Context
	svc     *Service
	entries map[[32]byte]*stagedEntry
}

func (s *Service) newStagedView(ctx context.Context) *stagedView {
	return &stagedView{ctx: ctx, svc: s, entries: make(map[[32]byte]*stagedEntry)}
}

func (v *stagedView) Read(k keylet.Keylet) ([]byte, error) {
	if e, ok := v.entries[k.Key]; ok {
		if e.deleted {
			return nil, nil
		}
		return e.data, nil
	}
	return v.svc.readEntry(v.ctx, k.Key)
}

func (v *stagedView) Exists(k keylet.Keylet) (bool, error) {
	data, err := v.Read(k)
	return data != nil, err
}

func (v *stagedView) Insert(k keylet.Keylet, data []byte) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return tx.ErrEntryExists
	}
	v.entries[k.Key] = &stagedEntry{data: data}
	return nil
}

func (v *stagedView) Update(k keylet.Keylet, data []byte) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	v.entries[k.Key] = &stagedEntry{data: data}
	return nil
}

func (v *stagedView) Erase(k keylet.Keylet) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	v.entries[k.Key] = &stagedEntry{deleted: true}
	return nil
}

// commit writes every staged change as one atomic batch and then
// refreshes the cache.
func (v *stagedView) commit(ctx context.Context) error {
	if len(v.entries) == 0 {
		return nil
	}
	ops := make([]database.BatchOperation, 0, len(v.entries))
	for key, e := range v.entries {
		if e.deleted {
			ops = append(ops, database.Del(key[:]))
		} else {
			ops = append(ops, database.Put(key[:], e.data))
		}
	}
	if err := v.svc.db.Batch(ctx, ops); err != nil {
		// The cache only ever holds committed values.
		return err
	}
	for key, e := range v.entries {
		if e.deleted {
			v.svc.cache.Remove(key)
		} else {
			v.svc.cache.Add(key, e.data)
		}
	}
	return nil
}
