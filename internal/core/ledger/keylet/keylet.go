package keylet

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goswapd/internal/crypto/common"
)

// Space identifiers for keylet generation
const (
	spaceAccount uint16 = 'a' // Account root
	spaceSwap    uint16 = 'h' // Hash-time-locked swap
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// String returns the hex encoding of the key.
func (k Keylet) String() string {
	return hex.EncodeToString(k.Key[:])
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// Account returns the keylet for an account root entry.
func Account(accountID [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// Swap returns the keylet for the swap opened by initiator under commitment.
//
// Each initiator gets its own namespace: two initiators may lock funds under
// the same commitment, but one initiator holds at most one live swap per
// commitment. Keys derived from the commitment alone, or from a
// caller-supplied identifier, are not supported.
func Swap(initiator [20]byte, commitment [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeSwap,
		Key:  indexHash(spaceSwap, initiator[:], commitment[:]),
	}
}

// FromKey wraps a raw key with the given entry type.
func FromKey(t entry.Type, key [32]byte) Keylet {
	return Keylet{Type: t, Key: key}
}

// Parse decodes a hex swap identifier into a swap keylet.
func Parse(s string) (Keylet, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return Keylet{}, false
	}
	var key [32]byte
	copy(key[:], b)
	return FromKey(entry.TypeSwap, key), true
}
