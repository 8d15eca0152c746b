// Package crypto provides the key pairs and identities used to authorize
// ledger transactions.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/asn1"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	common "github.com/LeJamon/goswapd/internal/crypto/common"
)

// KeyType represents the signature scheme of a key pair.
type KeyType int

const (
	// KeyTypeUnknown indicates an unknown or invalid key type.
	KeyTypeUnknown KeyType = iota
	// KeyTypeSecp256k1 indicates a secp256k1 (ECDSA) key.
	KeyTypeSecp256k1
	// KeyTypeEd25519 indicates an Ed25519 key.
	KeyTypeEd25519
)

// ed25519Prefix marks Ed25519 public keys so that every public key is 33 bytes.
const ed25519Prefix = 0xED

// SeedSize is the size of the random seed produced by GenerateKeyPair.
const SeedSize = 16

var (
	// ErrUnsupportedKeyType is returned when an unsupported key type is requested.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	// ErrEmptySeed is returned when a key pair is derived from an empty seed.
	ErrEmptySeed = errors.New("seed must not be empty")
)

// String returns the string representation of the key type.
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeSecp256k1:
		return "secp256k1"
	case KeyTypeEd25519:
		return "ed25519"
	default:
		return "unknown"
	}
}

// ParseKeyType parses "secp256k1" or "ed25519".
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "secp256k1":
		return KeyTypeSecp256k1, nil
	case "ed25519":
		return KeyTypeEd25519, nil
	default:
		return KeyTypeUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, s)
	}
}

// PublicKeyType determines the key type from a public key's raw bytes.
//
// Public key formats:
//   - Ed25519: 33 bytes, first byte is 0xED
//   - secp256k1: 33 bytes, first byte is 0x02 or 0x03 (compressed format)
func PublicKeyType(pubKey []byte) KeyType {
	if len(pubKey) != 33 {
		return KeyTypeUnknown
	}

	switch pubKey[0] {
	case ed25519Prefix:
		return KeyTypeEd25519
	case 0x02, 0x03:
		return KeyTypeSecp256k1
	default:
		return KeyTypeUnknown
	}
}

// KeyPair is a signing key together with its 33-byte public key.
type KeyPair struct {
	keyType KeyType
	public  []byte
	ed      ed25519.PrivateKey
	secp    *btcec.PrivateKey
}

// NewKeyPair deterministically derives a key pair from seed. The same seed
// and key type always produce the same key pair.
func NewKeyPair(keyType KeyType, seed []byte) (*KeyPair, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	material := common.Sha512Half(seed)

	switch keyType {
	case KeyTypeEd25519:
		priv := ed25519.NewKeyFromSeed(material[:])
		pub := priv.Public().(ed25519.PublicKey)
		return &KeyPair{
			keyType: keyType,
			public:  append([]byte{ed25519Prefix}, pub...),
			ed:      priv,
		}, nil
	case KeyTypeSecp256k1:
		priv, pub := btcec.PrivKeyFromBytes(material[:])
		return &KeyPair{
			keyType: keyType,
			public:  pub.SerializeCompressed(),
			secp:    priv,
		}, nil
	default:
		return nil, ErrUnsupportedKeyType
	}
}

// GenerateKeyPair creates a key pair from a fresh random seed and returns
// the seed alongside it.
func GenerateKeyPair(keyType KeyType) (*KeyPair, []byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, nil, fmt.Errorf("failed to generate seed: %w", err)
	}
	kp, err := NewKeyPair(keyType, seed)
	if err != nil {
		return nil, nil, err
	}
	return kp, seed, nil
}

// Type returns the signature scheme.
func (k *KeyPair) Type() KeyType { return k.keyType }

// PublicKey returns a copy of the 33-byte public key.
func (k *KeyPair) PublicKey() []byte {
	return append([]byte(nil), k.public...)
}

// AccountID returns the identity derived from the public key.
func (k *KeyPair) AccountID() [AccountIDSize]byte {
	return CalcAccountID(k.public)
}

// Sign signs a 32-byte digest. secp256k1 signatures are DER encoded with a
// low S value; Ed25519 signatures are the raw 64 bytes.
func (k *KeyPair) Sign(digest [32]byte) []byte {
	if k.keyType == KeyTypeEd25519 {
		return ed25519.Sign(k.ed, digest[:])
	}
	return ecdsa.Sign(k.secp, digest[:]).Serialize()
}

// Verify reports whether sig is a valid signature of digest by pubKey.
func Verify(pubKey []byte, digest [32]byte, sig []byte) bool {
	switch PublicKeyType(pubKey) {
	case KeyTypeEd25519:
		if len(sig) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pubKey[1:]), digest[:], sig)
	case KeyTypeSecp256k1:
		pub, err := btcec.ParsePubKey(pubKey)
		if err != nil {
			return false
		}
		if !isLowS(sig) {
			return false
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		return parsed.Verify(digest[:], pub)
	default:
		return false
	}
}

var secp256k1HalfOrder = new(big.Int).Rsh(btcec.S256().N, 1)

// isLowS rejects the malleable high-S form of a DER signature.
func isLowS(der []byte) bool {
	var sig struct{ R, S *big.Int }
	rest, err := asn1.Unmarshal(der, &sig)
	if err != nil || len(rest) != 0 {
		return false
	}
	return sig.S.Sign() > 0 && sig.S.Cmp(secp256k1HalfOrder) <= 0
}
