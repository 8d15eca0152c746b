package tx

import (
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/events"
)

// Sentinels for the envelope-level rejections
var (
	ErrUnauthorized = errors.New("required signature missing")
	ErrBadSequence  = errors.New("sequence mismatch")
	ErrInternal     = errors.New("internal error")
)

func init() {
	RegisterSentinel(TefBAD_SIGNATURE, ErrInvalidSignature)
	RegisterSentinel(TefBAD_AUTH, ErrUnauthorized)
	RegisterSentinel(TefPAST_SEQ, ErrBadSequence)
	RegisterSentinel(TerPRE_SEQ, ErrBadSequence)
	RegisterSentinel(TefINTERNAL, ErrInternal)
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// Tick is the logical clock value the transaction executes at
	Tick uint64

	// SwapDeposit is the storage deposit locked with every swap record
	SwapDeposit drops.Drops

	// MaxExpiryOffset bounds the expiry offset of new swaps; zero means unbounded
	MaxExpiryOffset uint64
}

// Engine processes transactions against a ledger view
type Engine struct {
	view   LedgerView
	config EngineConfig
	logger *slog.Logger
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// TxHash identifies the transaction
	TxHash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Events are the notifications produced by a successful transaction
	Events []events.Event

	// Message is a human-readable result message
	Message string
}

// Err returns the result as an error, or nil on success.
func (r ApplyResult) Err() error {
	if r.Result.IsSuccess() {
		return nil
	}
	return &ResultError{Code: r.Result, Detail: r.Message}
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		view:   view,
		config: config,
		logger: logger,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

func fail(r Result, hash [32]byte, msg string) ApplyResult {
	if msg == "" {
		msg = r.Message()
	}
	return ApplyResult{Result: r, TxHash: hash, Message: msg}
}

// Apply verifies and applies one envelope. Effects reach the engine's view
// only when the result is tesSUCCESS, and then all at once.
func (e *Engine) Apply(env *Envelope) ApplyResult {
	txHash := env.Hash()
	log := e.logger.With("tx_hash", hex.EncodeToString(txHash[:]), "tick", e.config.Tick)

	tx, err := env.Decode()
	if err != nil {
		if errors.Is(err, ErrUnknownTransactionType) {
			return fail(TemUNKNOWN, txHash, err.Error())
		}
		return fail(TemMALFORMED, txHash, err.Error())
	}
	log = log.With("tx_type", tx.TxType().String())

	// Step 1: signatures
	signers, err := env.VerifySignatures()
	if err != nil {
		log.Debug("signature verification failed", "err", err)
		return fail(TefBAD_SIGNATURE, txHash, err.Error())
	}

	// Step 2: preflight (syntax validation)
	if err := tx.GetCommon().Validate(); err != nil {
		return fail(ResultOf(err, TemMALFORMED), txHash, err.Error())
	}
	if err := tx.Validate(); err != nil {
		return fail(ResultOf(err, TemMALFORMED), txHash, err.Error())
	}

	// Step 3: preclaim (validate the submitting account against state)
	table := NewApplyStateTable(e.view, txHash)
	ctx := &ApplyContext{
		View:    table,
		Signers: signers,
		Config:  e.config,
		TxHash:  txHash,
		Logger:  log,
	}
	if r := e.preclaim(tx, ctx); r != TesSUCCESS {
		return fail(r, txHash, "")
	}

	// Step 4: apply
	appliable, ok := tx.(Appliable)
	if !ok {
		return fail(TemUNKNOWN, txHash, "transaction type cannot be applied")
	}
	result := appliable.Apply(ctx)
	if result != TesSUCCESS {
		log.Debug("transaction rejected", "result", result.String())
		return fail(result, txHash, "")
	}

	if ctx.Account != nil {
		ctx.Account.Sequence++
		data, err := entry.Encode(ctx.Account)
		if err != nil {
			log.Error("encode source account", "err", err)
			return fail(TefINTERNAL, txHash, "")
		}
		if err := table.Update(keylet.Account(ctx.AccountID), data); err != nil {
			log.Error("update source account", "err", err)
			return fail(TefINTERNAL, txHash, "")
		}
	}

	metadata, err := table.Apply()
	if err != nil {
		log.Error("apply state table", "err", err)
		return fail(TefINTERNAL, txHash, "")
	}
	log.Debug("transaction applied", "affected", len(metadata.AffectedNodes))

	return ApplyResult{
		Result:   TesSUCCESS,
		Applied:  true,
		TxHash:   txHash,
		Metadata: metadata,
		Events:   ctx.Events(),
		Message:  TesSUCCESS.Message(),
	}
}

// preclaim loads the submitting account, checks it signed the envelope and
// that the transaction carries its next sequence number.
func (e *Engine) preclaim(tx Transaction, ctx *ApplyContext) Result {
	common := tx.GetCommon()
	id, ok, err := common.AccountID()
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}
	if !ok {
		return TesSUCCESS
	}
	if !ctx.Signers.Has(id) {
		return TefBAD_AUTH
	}

	data, err := ctx.View.Read(keylet.Account(id))
	if err != nil {
		ctx.Logger.Error("read source account", "err", err)
		return TefINTERNAL
	}
	if data == nil {
		return TerNO_ACCOUNT
	}
	acct, err := entry.DecodeAccountRoot(data)
	if err != nil {
		ctx.Logger.Error("decode source account", "err", err)
		return TefINTERNAL
	}

	switch seq := *common.Sequence; {
	case seq < acct.Sequence:
		return TefPAST_SEQ
	case seq > acct.Sequence:
		return TerPRE_SEQ
	}

	ctx.Account = acct
	ctx.AccountID = id
	return TesSUCCESS
}
