package swap

import (
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

func init() {
	tx.Register(tx.TypeSwapRefund, func() tx.Transaction {
		return &Refund{BaseTx: *tx.NewBaseTx(tx.TypeSwapRefund, "")}
	})
}

// Refund returns an expired swap to its initiator. Anyone may submit it.
type Refund struct {
	tx.BaseTx

	// SwapID is the hex key of the swap record (required)
	SwapID string `json:"SwapID"`

	// Initiator must equal the recorded initiator (required)
	Initiator string `json:"Initiator"`
}

// NewRefund creates a new Refund transaction. submitter may be empty.
func NewRefund(submitter, swapID, initiator string) *Refund {
	return &Refund{
		BaseTx:    *tx.NewBaseTx(tx.TypeSwapRefund, submitter),
		SwapID:    swapID,
		Initiator: initiator,
	}
}

// TxType returns the transaction type
func (r *Refund) TxType() tx.Type {
	return tx.TypeSwapRefund
}

// Validate validates the Refund transaction
func (r *Refund) Validate() error {
	if _, err := parseSwapID(r.SwapID); err != nil {
		return err
	}
	if _, err := parseAddress("Initiator", r.Initiator); err != nil {
		return err
	}
	return nil
}

// Touches returns the swap record and the initiator's account
func (r *Refund) Touches() []keylet.Keylet {
	keys := r.AccountKeys()
	if k, err := parseSwapID(r.SwapID); err == nil {
		keys = append(keys, k)
	}
	if id, err := parseAddress("Initiator", r.Initiator); err == nil {
		keys = append(keys, keylet.Account(id))
	}
	return keys
}

// Apply applies a Refund transaction
func (r *Refund) Apply(ctx *tx.ApplyContext) tx.Result {
	k, err := parseSwapID(r.SwapID)
	if err != nil {
		return tx.TemMALFORMED
	}
	initiator, err := parseAddress("Initiator", r.Initiator)
	if err != nil {
		return tx.TemMALFORMED
	}

	record, res := ctx.ReadSwap(k)
	if res != tx.TesSUCCESS {
		return res
	}

	claims := Claims{RoleInitiator: initiator}
	if res := Authorize(tx.TypeSwapRefund, record, ctx.Signers, claims); res != tx.TesSUCCESS {
		return res
	}

	if !timelock.Expired(record.ExpiryTick, ctx.Config.Tick) {
		return tx.TecTOO_SOON
	}

	return closeSwap(ctx, tx.TypeSwapRefund, k, record, events.TypeRefunded, nil)
}
