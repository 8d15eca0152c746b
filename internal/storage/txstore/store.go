// Package txstore archives applied transaction envelopes by hash so they
// can be looked up after the fact. Records are msgpack encoded and LZ4
// compressed on top of a database.DB.
package txstore

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/storage/database"
)

// ErrNotFound is returned by Get for an unknown hash.
var ErrNotFound = errors.New("transaction not found")

// DefaultCacheSize is the number of decoded records kept in memory.
const DefaultCacheSize = 1024

// keyPrefix separates archived transactions from anything else in the DB.
const keyPrefix = 't'

// Record is one applied transaction.
type Record struct {
	Hash       [32]byte
	Tx         []byte
	Signatures []tx.Signature
	Result     string
	Tick       uint64
	Events     []events.Event
}

// Envelope rebuilds the submitted envelope.
func (r *Record) Envelope() *tx.Envelope {
	return &tx.Envelope{Tx: append([]byte(nil), r.Tx...), Signatures: r.Signatures}
}

var mh = &codec.MsgpackHandle{WriteExt: true}

// Store is the transaction archive.
type Store struct {
	db    database.DB
	cache *lru.Cache[[32]byte, *Record]
}

// New creates a Store over db. cacheSize <= 0 selects DefaultCacheSize.
func New(db database.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, *Record](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

func key(hash [32]byte) []byte {
	return append([]byte{keyPrefix}, hash[:]...)
}

// Put archives the outcome of an applied envelope. Rejected results are
// ignored since they never reach the ledger.
func (s *Store) Put(ctx context.Context, env *tx.Envelope, res tx.ApplyResult, tick uint64) error {
	if !res.Applied {
		return nil
	}
	rec := &Record{
		Hash:       res.TxHash,
		Tx:         append([]byte(nil), env.Tx...),
		Signatures: env.Signatures,
		Result:     res.Result.String(),
		Tick:       tick,
		Events:     res.Events,
	}

	var body []byte
	if err := codec.NewEncoderBytes(&body, mh).Encode(rec); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	value, err := compress(body)
	if err != nil {
		return err
	}
	if err := s.db.Write(ctx, key(rec.Hash), value); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	s.cache.Add(rec.Hash, rec)
	return nil
}

// Get returns the record archived under hash.
func (s *Store) Get(ctx context.Context, hash [32]byte) (*Record, error) {
	if rec, ok := s.cache.Get(hash); ok {
		return rec, nil
	}
	value, err := s.db.Read(ctx, key(hash))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	body, err := decompress(value)
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err := codec.NewDecoderBytes(body, mh).Decode(rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	s.cache.Add(hash, rec)
	return rec, nil
}
