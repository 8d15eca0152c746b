package tx

import (
	"encoding/hex"
	"errors"
	"log/slog"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/events"
)

// FirstSequence is the sequence number of a newly created account.
const FirstSequence uint32 = 1

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Account is the submitting account, or nil when the transaction has no
	// Account. It is written back by the engine on success.
	Account *entry.AccountRoot

	// AccountID is the decoded submitting account ID
	AccountID [20]byte

	// Signers is the set of accounts that signed the envelope
	Signers SignerSet

	// Config holds engine configuration (tick, deposit, limits)
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Logger is scoped to the current transaction
	Logger *slog.Logger

	events []events.Event
}

// Emit queues a notification. Queued events are published only if the
// transaction commits.
func (ctx *ApplyContext) Emit(ev events.Event) {
	ev.TxHash = hex.EncodeToString(ctx.TxHash[:])
	ev.Tick = ctx.Config.Tick
	ctx.events = append(ctx.events, ev)
}

// Events returns the notifications queued so far.
func (ctx *ApplyContext) Events() []events.Event {
	return ctx.events
}

func (ctx *ApplyContext) isSource(id [20]byte) bool {
	return ctx.Account != nil && id == ctx.AccountID
}

// ReadAccount loads an account root. It returns nil without error when the
// account does not exist.
func (ctx *ApplyContext) ReadAccount(id [20]byte) (*entry.AccountRoot, error) {
	if ctx.isSource(id) {
		return ctx.Account, nil
	}
	data, err := ctx.View.Read(keylet.Account(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return entry.DecodeAccountRoot(data)
}

// WriteAccount stores an account root, creating it if needed. The source
// account is left to the engine.
func (ctx *ApplyContext) WriteAccount(a *entry.AccountRoot) error {
	if ctx.isSource(a.Account) {
		return nil
	}
	data, err := entry.Encode(a)
	if err != nil {
		return err
	}
	k := keylet.Account(a.Account)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ctx.View.Update(k, data)
	}
	return ctx.View.Insert(k, data)
}

// Debit removes amount from an existing account. It returns TecUNFUNDED if
// the balance does not cover it.
func (ctx *ApplyContext) Debit(id [20]byte, amount drops.Drops) Result {
	acct, err := ctx.ReadAccount(id)
	if err != nil {
		ctx.Logger.Error("debit: read account", "account", addresscodec.EncodeAccountID(id), "err", err)
		return TefINTERNAL
	}
	if acct == nil {
		return TerNO_ACCOUNT
	}
	balance, err := acct.Balance.Sub(amount)
	if err != nil {
		return TecUNFUNDED
	}
	acct.Balance = balance
	if err := ctx.WriteAccount(acct); err != nil {
		ctx.Logger.Error("debit: write account", "account", addresscodec.EncodeAccountID(id), "err", err)
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Credit adds amount to an account, creating the account root if it does
// not exist yet.
func (ctx *ApplyContext) Credit(id [20]byte, amount drops.Drops) Result {
	acct, err := ctx.ReadAccount(id)
	if err != nil {
		ctx.Logger.Error("credit: read account", "account", addresscodec.EncodeAccountID(id), "err", err)
		return TefINTERNAL
	}
	if acct == nil {
		acct = &entry.AccountRoot{Account: id, Sequence: FirstSequence}
	}
	balance, err := acct.Balance.Add(amount)
	if err != nil {
		ctx.Logger.Error("credit: balance overflow", "account", addresscodec.EncodeAccountID(id), "err", err)
		return TefINTERNAL
	}
	acct.Balance = balance
	if err := ctx.WriteAccount(acct); err != nil {
		ctx.Logger.Error("credit: write account", "account", addresscodec.EncodeAccountID(id), "err", err)
		return TefINTERNAL
	}
	return TesSUCCESS
}

// ReadSwap loads the swap at k. It returns TecNO_TARGET when no swap lives there.
func (ctx *ApplyContext) ReadSwap(k keylet.Keylet) (*entry.Swap, Result) {
	data, err := ctx.View.Read(k)
	if err != nil {
		ctx.Logger.Error("read swap", "swap_id", k.String(), "err", err)
		return nil, TefINTERNAL
	}
	if data == nil {
		return nil, TecNO_TARGET
	}
	s, err := entry.DecodeSwap(data)
	if err != nil {
		if errors.Is(err, entry.ErrTypeMismatch) {
			return nil, TecNO_TARGET
		}
		ctx.Logger.Error("decode swap", "swap_id", k.String(), "err", err)
		return nil, TefINTERNAL
	}
	return s, TesSUCCESS
}

// CloseSwap destroys the swap at k and pays its whole custody balance to
// dest. Both effects land in the same view, so they commit or vanish together.
func (ctx *ApplyContext) CloseSwap(k keylet.Keylet, s *entry.Swap, dest [20]byte) (drops.Drops, Result) {
	custody, err := s.Custody()
	if err != nil {
		return 0, TefINTERNAL
	}
	if err := ctx.View.Erase(k); err != nil {
		ctx.Logger.Error("close swap: erase", "swap_id", k.String(), "err", err)
		return 0, TefINTERNAL
	}
	if r := ctx.Credit(dest, custody); r != TesSUCCESS {
		return 0, r
	}
	return custody, TesSUCCESS
}
