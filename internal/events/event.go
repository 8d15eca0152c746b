// Package events carries the notifications emitted by swap transitions
// to external observers.
package events

import (
	"github.com/LeJamon/goswapd/internal/core/drops"
)

// Type names a notification kind
type Type string

const (
	TypeInitiated       Type = "initiated"
	TypeRedeemed        Type = "redeemed"
	TypeRefunded        Type = "refunded"
	TypeInstantRefunded Type = "instant_refunded"
)

// Event is one notification. Identities are base58 addresses, digests and
// secrets are hex. Fields that do not apply to a Type are left empty.
type Event struct {
	Type   Type   `json:"type"`
	SwapID string `json:"swap_id"`
	TxHash string `json:"tx_hash"`
	Tick   uint64 `json:"tick"`

	Initiator  string      `json:"initiator"`
	Redeemer   string      `json:"redeemer,omitempty"`
	Commitment string      `json:"commitment,omitempty"`
	Amount     drops.Drops `json:"amount,omitempty"`
	Deposit    drops.Drops `json:"deposit,omitempty"`
	ExpiryTick uint64      `json:"expiry_tick,omitempty"`
	ExpiresIn  uint64      `json:"expires_in,omitempty"`

	// Secret is the revealed preimage, set on redeemed events only.
	Secret string `json:"secret,omitempty"`

	// Payout is the account credited by a terminal transition.
	Payout string `json:"payout,omitempty"`
}

// Terminal reports whether the event closed its swap.
func (e Event) Terminal() bool {
	return e.Type != TypeInitiated
}
