package service

import (
	"sync"
	"testing"
	"time"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/stretchr/testify/assert"
)

func TestKeyLocksSerializeOverlap(t *testing.T) {
	l := newKeyLocks()
	a := keylet.Account([20]byte{1})
	b := keylet.Account([20]byte{2})

	unlock := l.Lock([]keylet.Keylet{b, a, a})
	acquired := make(chan struct{})
	go func() {
		release := l.Lock([]keylet.Keylet{a})
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("overlapping lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired
	assert.Zero(t, l.size())
}

func TestKeyLocksDisjoint(t *testing.T) {
	l := newKeyLocks()
	unlock := l.Lock([]keylet.Keylet{keylet.Account([20]byte{1})})
	defer unlock()

	done := make(chan struct{})
	go func() {
		l.Lock([]keylet.Keylet{keylet.Account([20]byte{2})})()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint lock blocked")
	}
}

func TestKeyLocksOpposingOrder(t *testing.T) {
	l := newKeyLocks()
	a := keylet.Account([20]byte{1})
	b := keylet.Account([20]byte{2})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); l.Lock([]keylet.Keylet{a, b})() }()
		go func() { defer wg.Done(); l.Lock([]keylet.Keylet{b, a})() }()
	}
	wg.Wait()
	assert.Zero(t, l.size())
}
