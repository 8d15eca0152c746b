package swap

import (
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// Role is a party of a swap record.
type Role int

const (
	RoleNone Role = iota
	RoleInitiator
	RoleRedeemer
)

func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleRedeemer:
		return "redeemer"
	default:
		return "none"
	}
}

// of returns the identity holding role r in s.
func (r Role) of(s *entry.Swap) [20]byte {
	switch r {
	case RoleInitiator:
		return s.Initiator
	case RoleRedeemer:
		return s.Redeemer
	default:
		return [20]byte{}
	}
}

// Rule is the authorization rule of one transition.
type Rule struct {
	// Signer must have signed the envelope; RoleNone means anyone may submit.
	Signer Role
	// Match lists the roles whose caller-designated identity must equal the record's.
	Match []Role
	// Payout receives the custody balance; RoleNone for transitions that do not close.
	Payout Role
}

// Policy is the authorization table for every swap transition.
var Policy = map[tx.Type]Rule{
	tx.TypeSwapInitiate:      {Signer: RoleInitiator},
	tx.TypeSwapRedeem:        {Match: []Role{RoleRedeemer}, Payout: RoleRedeemer},
	tx.TypeSwapRefund:        {Match: []Role{RoleInitiator}, Payout: RoleInitiator},
	tx.TypeSwapInstantRefund: {Signer: RoleRedeemer, Match: []Role{RoleInitiator, RoleRedeemer}, Payout: RoleInitiator},
}

// Claims are the identities a caller designates in a transition.
type Claims map[Role][20]byte

// Authorize checks the rule for transition t against record s. Identity
// mismatches are reported before a missing signature.
func Authorize(t tx.Type, s *entry.Swap, signers tx.SignerSet, claims Claims) tx.Result {
	rule, ok := Policy[t]
	if !ok {
		return tx.TemUNKNOWN
	}

	for _, role := range rule.Match {
		claimed, ok := claims[role]
		if !ok || claimed != role.of(s) {
			return mismatch(role)
		}
	}

	if rule.Signer != RoleNone && !signers.Has(rule.Signer.of(s)) {
		return tx.TefBAD_AUTH
	}

	return tx.TesSUCCESS
}

// Payout returns the account credited when transition t closes s.
func Payout(t tx.Type, s *entry.Swap) ([20]byte, bool) {
	rule, ok := Policy[t]
	if !ok || rule.Payout == RoleNone {
		return [20]byte{}, false
	}
	return rule.Payout.of(s), true
}

func mismatch(role Role) tx.Result {
	if role == RoleInitiator {
		return tx.TecINVALID_INITIATOR
	}
	return tx.TecINVALID_REDEEMER
}
