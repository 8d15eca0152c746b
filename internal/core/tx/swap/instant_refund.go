package swap

import (
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

func init() {
	tx.Register(tx.TypeSwapInstantRefund, func() tx.Transaction {
		return &InstantRefund{BaseTx: *tx.NewBaseTx(tx.TypeSwapInstantRefund, "")}
	})
}

// InstantRefund returns a swap to its initiator before expiry. The
// recorded redeemer must sign the envelope.
type InstantRefund struct {
	tx.BaseTx

	// SwapID is the hex key of the swap record (required)
	SwapID string `json:"SwapID"`

	// Initiator must equal the recorded initiator (required)
	Initiator string `json:"Initiator"`

	// Redeemer must equal the recorded redeemer and sign the envelope (required)
	Redeemer string `json:"Redeemer"`
}

// NewInstantRefund creates a new InstantRefund transaction. submitter may be empty.
func NewInstantRefund(submitter, swapID, initiator, redeemer string) *InstantRefund {
	return &InstantRefund{
		BaseTx:    *tx.NewBaseTx(tx.TypeSwapInstantRefund, submitter),
		SwapID:    swapID,
		Initiator: initiator,
		Redeemer:  redeemer,
	}
}

// TxType returns the transaction type
func (r *InstantRefund) TxType() tx.Type {
	return tx.TypeSwapInstantRefund
}

// Validate validates the InstantRefund transaction
func (r *InstantRefund) Validate() error {
	if _, err := parseSwapID(r.SwapID); err != nil {
		return err
	}
	if _, err := parseAddress("Initiator", r.Initiator); err != nil {
		return err
	}
	if _, err := parseAddress("Redeemer", r.Redeemer); err != nil {
		return err
	}
	return nil
}

// Touches returns the swap record and the initiator's account
func (r *InstantRefund) Touches() []keylet.Keylet {
	keys := r.AccountKeys()
	if k, err := parseSwapID(r.SwapID); err == nil {
		keys = append(keys, k)
	}
	if id, err := parseAddress("Initiator", r.Initiator); err == nil {
		keys = append(keys, keylet.Account(id))
	}
	return keys
}

// Apply applies an InstantRefund transaction
func (r *InstantRefund) Apply(ctx *tx.ApplyContext) tx.Result {
	k, err := parseSwapID(r.SwapID)
	if err != nil {
		return tx.TemMALFORMED
	}
	initiator, err := parseAddress("Initiator", r.Initiator)
	if err != nil {
		return tx.TemMALFORMED
	}
	redeemer, err := parseAddress("Redeemer", r.Redeemer)
	if err != nil {
		return tx.TemMALFORMED
	}

	record, res := ctx.ReadSwap(k)
	if res != tx.TesSUCCESS {
		return res
	}

	claims := Claims{RoleInitiator: initiator, RoleRedeemer: redeemer}
	if res := Authorize(tx.TypeSwapInstantRefund, record, ctx.Signers, claims); res != tx.TesSUCCESS {
		return res
	}

	return closeSwap(ctx, tx.TypeSwapInstantRefund, k, record, events.TypeInstantRefunded, nil)
}
