package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account identity in bytes.
const AccountIDSize = 20

// CalcAccountID computes the account identity of a public key as
// RIPEMD160(SHA256(publicKey)). The full public key, including the
// key-type prefix, is hashed.
func CalcAccountID(publicKey []byte) [AccountIDSize]byte {
	sha256Hash := sha256.Sum256(publicKey)

	hasher := ripemd160.New()
	hasher.Write(sha256Hash[:])

	var result [AccountIDSize]byte
	copy(result[:], hasher.Sum(nil))
	return result
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns false if the slice is not exactly AccountIDSize bytes.
func AccountIDFromBytes(b []byte) ([AccountIDSize]byte, bool) {
	var result [AccountIDSize]byte
	if len(b) != AccountIDSize {
		return result, false
	}
	copy(result[:], b)
	return result, true
}

// IsZeroAccountID returns true if the account ID is all zeros.
func IsZeroAccountID(id [AccountIDSize]byte) bool {
	return id == [AccountIDSize]byte{}
}
