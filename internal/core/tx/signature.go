package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeJamon/goswapd/internal/crypto"
	common "github.com/LeJamon/goswapd/internal/crypto/common"
)

// Signature verification errors
var (
	ErrEmptyTransaction = errors.New("envelope carries no transaction")
	ErrMissingPublicKey = errors.New("signing public key is missing")
	ErrInvalidSignature = errors.New("signature is invalid")
	ErrUnknownKeyType   = errors.New("unknown public key type")
	ErrDuplicateSigner  = errors.New("duplicate signer in envelope")
)

var (
	// signingPrefix is prepended to the transaction bytes before signing ("STX\0")
	signingPrefix = []byte{0x53, 0x54, 0x58, 0x00}

	// txHashPrefix is prepended to the transaction bytes for its identity hash ("TXN\0")
	txHashPrefix = []byte{0x54, 0x58, 0x4E, 0x00}
)

// Signature is one authorization attached to an envelope.
type Signature struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// Envelope carries the canonical transaction bytes together with the
// signatures over them. Signatures cover Tx exactly as transmitted.
type Envelope struct {
	Tx         json.RawMessage `json:"tx"`
	Signatures []Signature     `json:"signatures,omitempty"`
}

// NewEnvelope serializes t into an unsigned envelope.
func NewEnvelope(t Transaction) (*Envelope, error) {
	data, err := ToJSON(t)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return &Envelope{Tx: data}, nil
}

// SigningHash returns the digest signed by every signer of txBytes.
func SigningHash(txBytes []byte) [32]byte {
	return common.Sha512Half(signingPrefix, txBytes)
}

// Hash returns the identity hash of the enveloped transaction.
func (e *Envelope) Hash() [32]byte {
	return common.Sha512Half(txHashPrefix, e.Tx)
}

// Sign appends a signature by kp over the envelope's transaction bytes.
func (e *Envelope) Sign(kp *crypto.KeyPair) {
	sig := kp.Sign(SigningHash(e.Tx))
	e.Signatures = append(e.Signatures, Signature{
		PublicKey: hex.EncodeToString(kp.PublicKey()),
		Signature: hex.EncodeToString(sig),
	})
}

// Decode parses the enveloped transaction.
func (e *Envelope) Decode() (Transaction, error) {
	if len(bytes.TrimSpace(e.Tx)) == 0 {
		return nil, ErrEmptyTransaction
	}
	return FromJSON(e.Tx)
}

// SignerSet is the set of accounts that authorized an envelope.
type SignerSet map[[20]byte]struct{}

// Has reports whether id signed the envelope.
func (s SignerSet) Has(id [20]byte) bool {
	_, ok := s[id]
	return ok
}

// VerifySignatures checks every signature on the envelope and returns the
// accounts behind them. Any invalid signature fails the whole envelope.
func (e *Envelope) VerifySignatures() (SignerSet, error) {
	signers := make(SignerSet, len(e.Signatures))
	digest := SigningHash(e.Tx)

	for i, s := range e.Signatures {
		if s.PublicKey == "" {
			return nil, fmt.Errorf("signature %d: %w", i, ErrMissingPublicKey)
		}
		pub, err := hex.DecodeString(s.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("signature %d: public key: %w", i, err)
		}
		if crypto.PublicKeyType(pub) == crypto.KeyTypeUnknown {
			return nil, fmt.Errorf("signature %d: %w", i, ErrUnknownKeyType)
		}
		sig, err := hex.DecodeString(s.Signature)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		if !crypto.Verify(pub, digest, sig) {
			return nil, fmt.Errorf("signature %d: %w", i, ErrInvalidSignature)
		}

		id := crypto.CalcAccountID(pub)
		if signers.Has(id) {
			return nil, fmt.Errorf("signature %d: %w", i, ErrDuplicateSigner)
		}
		signers[id] = struct{}{}
	}

	return signers, nil
}
