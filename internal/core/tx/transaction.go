package tx

import (
	"errors"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks if the transaction is well formed. A returned
	// *ResultError selects the tem code reported for the failure.
	Validate() error

	// Touches returns every ledger key the transaction may read or write.
	// The ledger serializes transactions whose key sets overlap.
	Touches() []keylet.Keylet
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	TransactionType string `json:"TransactionType"`

	// Account is the submitting account. When present it must sign the
	// envelope and Sequence must match its next sequence number.
	Account  string  `json:"Account,omitempty"`
	Sequence *uint32 `json:"Sequence,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.TransactionType == "" {
		return Errorf(TemINVALID, "TransactionType is required")
	}
	if c.Account == "" {
		if c.Sequence != nil {
			return Errorf(TemBAD_SEQUENCE, "Sequence without Account")
		}
		return nil
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return Errorf(TemBAD_SRC_ACCOUNT, "invalid Account %q", c.Account)
	}
	if c.Sequence == nil {
		return Errorf(TemBAD_SEQUENCE, "Sequence is required with Account")
	}
	return nil
}

// AccountID decodes the submitting account. ok is false when the
// transaction has no Account.
func (c *Common) AccountID() (id [20]byte, ok bool, err error) {
	if c.Account == "" {
		return id, false, nil
	}
	id, err = addresscodec.DecodeAddress(c.Account)
	if err != nil {
		return id, false, err
	}
	return id, true, nil
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// SetSequence sets the submitting account's sequence
func (b *BaseTx) SetSequence(seq uint32) {
	b.Sequence = &seq
}

// AccountKeys returns the account root keylet of the submitting account,
// if any, for inclusion in Touches.
func (b *BaseTx) AccountKeys() []keylet.Keylet {
	id, ok, err := b.AccountID()
	if err != nil || !ok {
		return nil
	}
	return []keylet.Keylet{keylet.Account(id)}
}

// NewBaseTx creates a new BaseTx with the given type and account
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
