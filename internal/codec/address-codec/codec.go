// Package addresscodec encodes account identities as base58check strings.
package addresscodec

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/LeJamon/goswapd/internal/crypto"
)

// AccountVersion is the version byte of encoded account addresses. Every
// encoded address starts with 's'.
const AccountVersion byte = 0x7d

var (
	// ErrInvalidAddress is returned when an address cannot be decoded.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidVersion is returned when an address carries a foreign version byte.
	ErrInvalidVersion = errors.New("invalid address version")
)

// EncodeAccountID encodes a 20-byte account ID as an address.
func EncodeAccountID(id [crypto.AccountIDSize]byte) string {
	return base58.CheckEncode(id[:], AccountVersion)
}

// DecodeAddress decodes an address into its account ID.
func DecodeAddress(address string) ([crypto.AccountIDSize]byte, error) {
	var id [crypto.AccountIDSize]byte

	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return id, fmt.Errorf("%w: %s: %v", ErrInvalidAddress, address, err)
	}
	if version != AccountVersion {
		return id, fmt.Errorf("%w: 0x%02x", ErrInvalidVersion, version)
	}
	id, ok := crypto.AccountIDFromBytes(payload)
	if !ok {
		return id, fmt.Errorf("%w: payload is %d bytes", ErrInvalidAddress, len(payload))
	}
	return id, nil
}

// IsValidAddress reports whether address decodes to an account ID.
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

// EncodePublicKey derives and encodes the address of a public key.
func EncodePublicKey(publicKey []byte) string {
	return EncodeAccountID(crypto.CalcAccountID(publicKey))
}
