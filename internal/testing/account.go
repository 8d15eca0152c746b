package testing

import (
	"fmt"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/crypto"
)

// Account represents a test account with keypair and address information.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// KeyType is the signature scheme of Key.
	KeyType crypto.KeyType

	// Seed is the material Key was derived from.
	Seed []byte

	// Key signs envelopes for the account.
	Key *crypto.KeyPair

	// Address is the base58 address.
	Address string

	// ID is the 20-byte account ID derived from the public key.
	ID [20]byte
}

// NewAccount creates a test account with a deterministic secp256k1 key
// pair derived from the name. The same name always yields the same account.
func NewAccount(name string) *Account {
	return NewAccountWithKeyType(name, crypto.KeyTypeSecp256k1)
}

// NewAccountWithKeyType creates a new test account with the specified key type.
func NewAccountWithKeyType(name string, keyType crypto.KeyType) *Account {
	seed := []byte("swapd test account " + name)
	kp, err := crypto.NewKeyPair(keyType, seed)
	if err != nil {
		panic(fmt.Sprintf("failed to derive %s keypair for account %s: %v", keyType, name, err))
	}
	id := kp.AccountID()
	return &Account{
		Name:    name,
		KeyType: keyType,
		Seed:    seed,
		Key:     kp,
		Address: addresscodec.EncodeAccountID(id),
		ID:      id,
	}
}

// String returns the account name and address.
func (a *Account) String() string {
	return a.Name + " (" + a.Address + ")"
}
