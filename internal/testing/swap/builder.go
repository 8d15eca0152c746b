// Package swap provides fluent builders for swap transactions in tests.
package swap

import (
	"encoding/hex"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	swaptx "github.com/LeJamon/goswapd/internal/core/tx/swap"
	"github.com/LeJamon/goswapd/internal/testing"
)

// DefaultExpiry is the expiry offset used when ExpiresIn is not called.
const DefaultExpiry uint64 = 500

// NewSecret derives a deterministic 32-byte secret from name.
func NewSecret(name string) []byte {
	c := hashlock.Commit([]byte("swapd test secret " + name))
	return c[:]
}

// Commitment returns the hex commitment of secret.
func Commitment(secret []byte) string {
	c := hashlock.Commit(secret)
	return hex.EncodeToString(c[:])
}

// ID returns the id of the swap initiator creates under secret.
func ID(initiator *testing.Account, secret []byte) string {
	return swaptx.ID(initiator.ID, hashlock.Commit(secret))
}

// InitiateBuilder provides a fluent interface for building Initiate transactions.
type InitiateBuilder struct {
	from       *testing.Account
	to         *testing.Account
	commitment string
	amount     drops.Drops
	expiry     uint64
	sequence   *uint32
}

// Initiate creates a builder locking amount from from for to under secret.
func Initiate(from, to *testing.Account, secret []byte, amount drops.Drops) *InitiateBuilder {
	return &InitiateBuilder{
		from:       from,
		to:         to,
		commitment: Commitment(secret),
		amount:     amount,
		expiry:     DefaultExpiry,
	}
}

// InitiateWithCommitment creates a builder for a counterparty that knows
// only the hex commitment.
func InitiateWithCommitment(from, to *testing.Account, commitment string, amount drops.Drops) *InitiateBuilder {
	return &InitiateBuilder{
		from:       from,
		to:         to,
		commitment: commitment,
		amount:     amount,
		expiry:     DefaultExpiry,
	}
}

// Commitment overrides the commitment, e.g. with a malformed value.
func (b *InitiateBuilder) Commitment(hexCommitment string) *InitiateBuilder {
	b.commitment = hexCommitment
	return b
}

// ExpiresIn sets the expiry offset in ticks.
func (b *InitiateBuilder) ExpiresIn(ticks uint64) *InitiateBuilder {
	b.expiry = ticks
	return b
}

// Sequence sets the sequence number explicitly.
func (b *InitiateBuilder) Sequence(seq uint32) *InitiateBuilder {
	b.sequence = &seq
	return b
}

// Build constructs the Initiate transaction.
func (b *InitiateBuilder) Build() tx.Transaction {
	return b.BuildInitiate()
}

// BuildInitiate constructs the concrete Initiate transaction.
func (b *InitiateBuilder) BuildInitiate() *swaptx.Initiate {
	txn := swaptx.NewInitiate(b.from.Address, b.to.Address, b.commitment, b.amount, b.expiry)
	if b.sequence != nil {
		txn.SetSequence(*b.sequence)
	}
	return txn
}

// RedeemBuilder provides a fluent interface for building Redeem transactions.
type RedeemBuilder struct {
	swapID    string
	redeemer  *testing.Account
	secret    string
	submitter *testing.Account
}

// Redeem creates a builder revealing secret to pay swapID to redeemer.
func Redeem(swapID string, redeemer *testing.Account, secret []byte) *RedeemBuilder {
	return &RedeemBuilder{
		swapID:   swapID,
		redeemer: redeemer,
		secret:   hex.EncodeToString(secret),
	}
}

// From names a submitting account, which must then sign.
func (b *RedeemBuilder) From(submitter *testing.Account) *RedeemBuilder {
	b.submitter = submitter
	return b
}

// Build constructs the Redeem transaction.
func (b *RedeemBuilder) Build() tx.Transaction {
	return swaptx.NewRedeem(address(b.submitter), b.swapID, b.redeemer.Address, b.secret)
}

// RefundBuilder provides a fluent interface for building Refund transactions.
type RefundBuilder struct {
	swapID    string
	initiator *testing.Account
	submitter *testing.Account
}

// Refund creates a builder returning swapID to initiator after expiry.
func Refund(swapID string, initiator *testing.Account) *RefundBuilder {
	return &RefundBuilder{swapID: swapID, initiator: initiator}
}

// From names a submitting account, which must then sign.
func (b *RefundBuilder) From(submitter *testing.Account) *RefundBuilder {
	b.submitter = submitter
	return b
}

// Build constructs the Refund transaction.
func (b *RefundBuilder) Build() tx.Transaction {
	return swaptx.NewRefund(address(b.submitter), b.swapID, b.initiator.Address)
}

// InstantRefundBuilder provides a fluent interface for building
// InstantRefund transactions.
type InstantRefundBuilder struct {
	swapID    string
	initiator *testing.Account
	redeemer  *testing.Account
	submitter *testing.Account
}

// InstantRefund creates a builder returning swapID to initiator before
// expiry. The redeemer must sign the envelope.
func InstantRefund(swapID string, initiator, redeemer *testing.Account) *InstantRefundBuilder {
	return &InstantRefundBuilder{swapID: swapID, initiator: initiator, redeemer: redeemer}
}

// From names a submitting account, which must then sign.
func (b *InstantRefundBuilder) From(submitter *testing.Account) *InstantRefundBuilder {
	b.submitter = submitter
	return b
}

// Build constructs the InstantRefund transaction.
func (b *InstantRefundBuilder) Build() tx.Transaction {
	return swaptx.NewInstantRefund(address(b.submitter), b.swapID, b.initiator.Address, b.redeemer.Address)
}

func address(acc *testing.Account) string {
	if acc == nil {
		return ""
	}
	return acc.Address
}
