package swap

import (
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

func init() {
	tx.Register(tx.TypeSwapInitiate, func() tx.Transaction {
		return &Initiate{BaseTx: *tx.NewBaseTx(tx.TypeSwapInitiate, "")}
	})
}

// Initiate locks Amount from Account (the initiator) for Redeemer under
// Commitment until ExpiryOffset ticks from now.
type Initiate struct {
	tx.BaseTx

	// Redeemer is the account entitled to redeem with the secret (required)
	Redeemer string `json:"Redeemer"`

	// Commitment is the hex SHA-256 digest of the secret (required)
	Commitment string `json:"Commitment"`

	// Amount is the principal to lock, in drops (required)
	Amount drops.Drops `json:"Amount"`

	// ExpiryOffset is the number of ticks until the swap becomes refundable (required)
	ExpiryOffset uint64 `json:"ExpiryOffset"`
}

// NewInitiate creates a new Initiate transaction
func NewInitiate(initiator, redeemer, commitment string, amount drops.Drops, expiryOffset uint64) *Initiate {
	return &Initiate{
		BaseTx:       *tx.NewBaseTx(tx.TypeSwapInitiate, initiator),
		Redeemer:     redeemer,
		Commitment:   commitment,
		Amount:       amount,
		ExpiryOffset: expiryOffset,
	}
}

// TxType returns the transaction type
func (i *Initiate) TxType() tx.Type {
	return tx.TypeSwapInitiate
}

// Validate validates the Initiate transaction
func (i *Initiate) Validate() error {
	if i.Account == "" {
		return tx.Errorf(tx.TemMALFORMED, "Account is required")
	}
	if i.Redeemer == "" {
		return tx.Errorf(tx.TemMALFORMED, "Redeemer is required")
	}
	if _, err := parseAddress("Redeemer", i.Redeemer); err != nil {
		return err
	}
	if i.Redeemer == i.Account {
		return tx.Errorf(tx.TemDST_IS_SRC, "Redeemer may not be the initiator")
	}
	if _, err := parseCommitment(i.Commitment); err != nil {
		return err
	}
	if i.Amount.IsZero() {
		return tx.Errorf(tx.TemBAD_AMOUNT, "Amount must be positive")
	}
	if i.Amount > drops.MaxDrops {
		return tx.Errorf(tx.TemBAD_AMOUNT, "Amount exceeds %d", drops.MaxDrops)
	}
	if i.ExpiryOffset == 0 {
		return tx.Errorf(tx.TemBAD_EXPIRATION, "ExpiryOffset must be positive")
	}
	return nil
}

// Touches returns the initiator's account and the swap record
func (i *Initiate) Touches() []keylet.Keylet {
	keys := i.AccountKeys()
	initiator, ok, err := i.AccountID()
	if err != nil || !ok {
		return keys
	}
	commitment, err := parseCommitment(i.Commitment)
	if err != nil {
		return keys
	}
	return append(keys, keylet.Swap(initiator, commitment))
}

// Apply applies an Initiate transaction
func (i *Initiate) Apply(ctx *tx.ApplyContext) tx.Result {
	redeemer, err := parseAddress("Redeemer", i.Redeemer)
	if err != nil {
		return tx.TemMALFORMED
	}
	commitment, err := parseCommitment(i.Commitment)
	if err != nil {
		return tx.TemBAD_SECRET
	}

	if limit := ctx.Config.MaxExpiryOffset; limit > 0 && i.ExpiryOffset > limit {
		return tx.TemBAD_EXPIRATION
	}
	expiry, err := timelock.ExpiryTick(ctx.Config.Tick, i.ExpiryOffset)
	if err != nil {
		return tx.TemBAD_EXPIRATION
	}

	record := &entry.Swap{
		Initiator:   ctx.AccountID,
		Redeemer:    redeemer,
		Commitment:  commitment,
		Amount:      i.Amount,
		Deposit:     ctx.Config.SwapDeposit,
		ExpiryTick:  expiry,
		CreatedTick: ctx.Config.Tick,
		CreatedTxID: ctx.TxHash,
	}
	if r := Authorize(tx.TypeSwapInitiate, record, ctx.Signers, nil); r != tx.TesSUCCESS {
		return r
	}

	k := keylet.Swap(record.Initiator, record.Commitment)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		ctx.Logger.Error("check swap", "swap_id", k.String(), "err", err)
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecDUPLICATE
	}

	custody, err := record.Custody()
	if err != nil {
		return tx.TemBAD_AMOUNT
	}
	if r := ctx.Debit(record.Initiator, custody); r != tx.TesSUCCESS {
		return r
	}

	data, err := entry.Encode(record)
	if err != nil {
		ctx.Logger.Error("encode swap", "swap_id", k.String(), "err", err)
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(k, data); err != nil {
		ctx.Logger.Error("insert swap", "swap_id", k.String(), "err", err)
		return tx.TefINTERNAL
	}

	ev := swapEvent(events.TypeInitiated, k, record)
	ev.ExpiryTick = record.ExpiryTick
	ev.ExpiresIn = i.ExpiryOffset
	ctx.Emit(ev)

	return tx.TesSUCCESS
}
