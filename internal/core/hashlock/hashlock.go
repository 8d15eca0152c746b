// Package hashlock verifies revealed secrets against stored commitments.
//
// The digest is SHA-256, the hash the ledger exposes natively. A commitment
// is the 32-byte digest of a secret; a secret opens a commitment only if its
// digest matches byte for byte.
package hashlock

import (
	"crypto/sha256"
	"crypto/subtle"
)

// CommitmentSize is the size of a commitment in bytes.
const CommitmentSize = sha256.Size

// Commit returns the commitment of secret.
func Commit(secret []byte) [CommitmentSize]byte {
	return sha256.Sum256(secret)
}

// Verify reports whether secret opens commitment.
func Verify(secret []byte, commitment [CommitmentSize]byte) bool {
	digest := sha256.Sum256(secret)
	return subtle.ConstantTimeCompare(digest[:], commitment[:]) == 1
}

// VerifyBytes is Verify for a commitment held as a byte slice. A commitment
// of the wrong length never verifies.
func VerifyBytes(secret, commitment []byte) bool {
	if len(commitment) != CommitmentSize {
		return false
	}
	var c [CommitmentSize]byte
	copy(c[:], commitment)
	return Verify(secret, c)
}
