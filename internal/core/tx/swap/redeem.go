package swap

import (
	"encoding/hex"

	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

func init() {
	tx.Register(tx.TypeSwapRedeem, func() tx.Transaction {
		return &Redeem{BaseTx: *tx.NewBaseTx(tx.TypeSwapRedeem, "")}
	})
}

// Redeem reveals Secret and pays the swap to its redeemer. Anyone may
// submit it; the payout always goes to the recorded redeemer.
type Redeem struct {
	tx.BaseTx

	// SwapID is the hex key of the swap record (required)
	SwapID string `json:"SwapID"`

	// Redeemer must equal the recorded redeemer (required)
	Redeemer string `json:"Redeemer"`

	// Secret is the hex preimage of the commitment (required)
	Secret string `json:"Secret"`
}

// NewRedeem creates a new Redeem transaction. submitter may be empty.
func NewRedeem(submitter, swapID, redeemer, secret string) *Redeem {
	return &Redeem{
		BaseTx:   *tx.NewBaseTx(tx.TypeSwapRedeem, submitter),
		SwapID:   swapID,
		Redeemer: redeemer,
		Secret:   secret,
	}
}

// TxType returns the transaction type
func (r *Redeem) TxType() tx.Type {
	return tx.TypeSwapRedeem
}

// Validate validates the Redeem transaction
func (r *Redeem) Validate() error {
	if _, err := parseSwapID(r.SwapID); err != nil {
		return err
	}
	if _, err := parseAddress("Redeemer", r.Redeemer); err != nil {
		return err
	}
	if _, err := parseSecret(r.Secret); err != nil {
		return err
	}
	return nil
}

// Touches returns the swap record and the redeemer's account
func (r *Redeem) Touches() []keylet.Keylet {
	keys := r.AccountKeys()
	if k, err := parseSwapID(r.SwapID); err == nil {
		keys = append(keys, k)
	}
	if id, err := parseAddress("Redeemer", r.Redeemer); err == nil {
		keys = append(keys, keylet.Account(id))
	}
	return keys
}

// Apply applies a Redeem transaction
func (r *Redeem) Apply(ctx *tx.ApplyContext) tx.Result {
	k, err := parseSwapID(r.SwapID)
	if err != nil {
		return tx.TemMALFORMED
	}
	redeemer, err := parseAddress("Redeemer", r.Redeemer)
	if err != nil {
		return tx.TemMALFORMED
	}
	secret, err := parseSecret(r.Secret)
	if err != nil {
		return tx.TemBAD_SECRET
	}

	record, res := ctx.ReadSwap(k)
	if res != tx.TesSUCCESS {
		return res
	}

	claims := Claims{RoleRedeemer: redeemer}
	if res := Authorize(tx.TypeSwapRedeem, record, ctx.Signers, claims); res != tx.TesSUCCESS {
		return res
	}

	if !hashlock.Verify(secret, record.Commitment) {
		return tx.TecINVALID_SECRET
	}

	return closeSwap(ctx, tx.TypeSwapRedeem, k, record, events.TypeRedeemed, func(ev *events.Event) {
		ev.Secret = hex.EncodeToString(secret)
	})
}
