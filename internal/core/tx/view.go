package tx

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

// View errors
var (
	ErrEntryExists   = errors.New("entry already exists")
	ErrEntryNotFound = errors.New("entry not found")
)

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. It returns nil data and no error when the
	// entry does not exist.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry; it fails with ErrEntryExists if the key is occupied
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// MemoryView is a LedgerView over a map. It is not safe for concurrent use.
type MemoryView struct {
	entries map[[32]byte][]byte
}

// NewMemoryView creates an empty MemoryView
func NewMemoryView() *MemoryView {
	return &MemoryView{entries: make(map[[32]byte][]byte)}
}

func (v *MemoryView) Read(k keylet.Keylet) ([]byte, error) {
	return v.entries[k.Key], nil
}

func (v *MemoryView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *MemoryView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; ok {
		return ErrEntryExists
	}
	v.entries[k.Key] = data
	return nil
}

func (v *MemoryView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	v.entries[k.Key] = data
	return nil
}

func (v *MemoryView) Erase(k keylet.Keylet) error {
	if _, ok := v.entries[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(v.entries, k.Key)
	return nil
}

// Len returns the number of stored entries
func (v *MemoryView) Len() int {
	return len(v.entries)
}
