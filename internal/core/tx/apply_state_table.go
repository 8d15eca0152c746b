package tx

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// String returns the metadata node type for the action
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "CreatedNode"
	case ActionModify:
		return "ModifiedNode"
	case ActionErase:
		return "DeletedNode"
	default:
		return "Cached"
	}
}

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Keylet   keylet.Keylet
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// AffectedNode describes one entry changed by a transaction
type AffectedNode struct {
	NodeType        string `json:"node_type"`
	LedgerEntryType string `json:"ledger_entry_type"`
	LedgerIndex     string `json:"ledger_index"`
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	AffectedNodes     []AffectedNode `json:"affected_nodes"`
	TransactionResult Result         `json:"-"`
}

// ApplyStateTable wraps a LedgerView and buffers all modifications made by
// one transaction. Nothing reaches the base view until Apply; discarding
// the table discards the transaction's effects.
type ApplyStateTable struct {
	base   LedgerView
	items  map[[32]byte]*TrackedEntry
	txHash [32]byte
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView, txHash [32]byte) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
	}
}

// TxHash returns the hash of the transaction owning the table
func (t *ApplyStateTable) TxHash() [32]byte {
	return t.txHash
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Keylet:   k,
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("insert %s: %w", k, ErrEntryExists)
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("insert %s: %w", k, ErrEntryExists)
	}

	t.items[k.Key] = &TrackedEntry{
		Keylet:  k,
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("update %s: %w", k, ErrEntryNotFound)
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("update %s: %w", k, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Keylet:   k,
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("erase %s: %w", k, ErrEntryNotFound)
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("erase %s: %w", k, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Keylet:   k,
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action == ActionErase
	}
	return false
}

// Changes returns the tracked entries that modify state, ordered by key.
func (t *ApplyStateTable) Changes() []*TrackedEntry {
	out := make([]*TrackedEntry, 0, len(t.items))
	for _, entry := range t.items {
		switch entry.Action {
		case ActionCache:
			continue
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Keylet.Key[:], out[j].Keylet.Key[:]) < 0
	})
	return out
}

// Apply commits all changes to the base view and returns generated metadata.
// Changes are written in key order.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0, len(t.items)),
		TransactionResult: TesSUCCESS,
	}

	for _, entry := range t.Changes() {
		var err error
		switch entry.Action {
		case ActionInsert:
			err = t.base.Insert(entry.Keylet, entry.Current)
		case ActionModify:
			err = t.base.Update(entry.Keylet, entry.Current)
		case ActionErase:
			err = t.base.Erase(entry.Keylet)
		}
		if err != nil {
			return nil, fmt.Errorf("apply %s %s: %w", entry.Action, entry.Keylet, err)
		}

		metadata.AffectedNodes = append(metadata.AffectedNodes, AffectedNode{
			NodeType:        entry.Action.String(),
			LedgerEntryType: entry.Keylet.Type.String(),
			LedgerIndex:     fmt.Sprintf("%X", entry.Keylet.Key),
		})
	}

	t.items = make(map[[32]byte]*TrackedEntry)
	return metadata, nil
}
