package service

import (
	"bytes"
	"sort"
	"sync"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

// keyLocks serializes access per ledger key. Locks are always taken in key
// order, so two transactions with overlapping key sets cannot deadlock.
type keyLocks struct {
	mu    sync.Mutex
	locks map[[32]byte]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[[32]byte]*keyLock)}
}

// Lock acquires every key in ks and returns the function releasing them.
func (l *keyLocks) Lock(ks []keylet.Keylet) (unlock func()) {
	keys := make([][32]byte, 0, len(ks))
	for _, k := range ks {
		keys = append(keys, k.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	held := make([]*keyLock, 0, len(keys))
	var last *[32]byte
	for i := range keys {
		if last != nil && *last == keys[i] {
			continue
		}
		last = &keys[i]
		kl := l.acquire(keys[i])
		kl.mu.Lock()
		held = append(held, kl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		l.release(keys)
	}
}

func (l *keyLocks) acquire(key [32]byte) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) release(keys [][32]byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var last *[32]byte
	for i := range keys {
		if last != nil && *last == keys[i] {
			continue
		}
		last = &keys[i]
		kl := l.locks[keys[i]]
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, keys[i])
		}
	}
}

// size returns the number of keys currently locked or awaited.
func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
