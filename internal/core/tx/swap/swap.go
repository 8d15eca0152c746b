package swap

import (
	"encoding/hex"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

// MaxSecretSize bounds the length of a revealed secret.
const MaxSecretSize = 256

// ID returns the hex swap identifier for initiator and commitment.
func ID(initiator [20]byte, commitment [32]byte) string {
	return keylet.Swap(initiator, commitment).String()
}

func parseSwapID(id string) (keylet.Keylet, error) {
	k, ok := keylet.Parse(id)
	if !ok {
		return keylet.Keylet{}, tx.Errorf(tx.TemMALFORMED, "invalid SwapID %q", id)
	}
	return k, nil
}

func parseAddress(field, address string) ([20]byte, error) {
	id, err := addresscodec.DecodeAddress(address)
	if err != nil {
		return id, tx.Errorf(tx.TemMALFORMED, "invalid %s %q", field, address)
	}
	return id, nil
}

func parseCommitment(s string) ([32]byte, error) {
	var c [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(c) {
		return c, tx.Errorf(tx.TemBAD_SECRET, "Commitment must be 32 hex-encoded bytes")
	}
	copy(c[:], b)
	return c, nil
}

func parseSecret(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) == 0 || len(b) > MaxSecretSize {
		return nil, tx.Errorf(tx.TemBAD_SECRET, "Secret must be 1 to %d hex-encoded bytes", MaxSecretSize)
	}
	return b, nil
}

// swapEvent fills the fields shared by every notification about s.
func swapEvent(t events.Type, k keylet.Keylet, s *entry.Swap) events.Event {
	return events.Event{
		Type:       t,
		SwapID:     k.String(),
		Initiator:  addresscodec.EncodeAccountID(s.Initiator),
		Redeemer:   addresscodec.EncodeAccountID(s.Redeemer),
		Commitment: hex.EncodeToString(s.Commitment[:]),
		Amount:     s.Amount,
		Deposit:    s.Deposit,
	}
}

// closeSwap destroys the swap at k and pays its custody balance to the
// payout role of transition t. decorate, if set, adds transition-specific
// fields to the emitted event.
func closeSwap(ctx *tx.ApplyContext, t tx.Type, k keylet.Keylet, s *entry.Swap, evType events.Type, decorate func(*events.Event)) tx.Result {
	dest, ok := Payout(t, s)
	if !ok {
		return tx.TefINTERNAL
	}
	paid, r := ctx.CloseSwap(k, s, dest)
	if r != tx.TesSUCCESS {
		return r
	}

	ev := swapEvent(evType, k, s)
	ev.Payout = addresscodec.EncodeAccountID(dest)
	if decorate != nil {
		decorate(&ev)
	}
	ctx.Emit(ev)

	ctx.Logger.Debug("swap closed",
		"swap_id", k.String(),
		"transition", t.String(),
		"payout", ev.Payout,
		"custody", paid.String(),
	)
	return tx.TesSUCCESS
}
