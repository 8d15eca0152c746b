// Package entry defines the records held in ledger state and their
// on-disk encoding.
package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeAccountRoot Type = 0x0061 // Account objects
	TypeSwap        Type = 0x0068 // Hash-time-locked swaps
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeSwap:
		return "Swap"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}
