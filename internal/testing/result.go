package testing

import (
	"encoding/hex"

	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/events"
)

// TxResult represents the result of a transaction submission.
type TxResult struct {
	// Code is the engine result code.
	Code tx.Result

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// TxHash is the hex identity hash of the envelope.
	TxHash string

	// Events are the notifications produced on success.
	Events []events.Event
}

func newTxResult(res tx.ApplyResult) TxResult {
	return TxResult{
		Code:    res.Result,
		Success: res.Applied,
		Message: res.Message,
		TxHash:  hex.EncodeToString(res.TxHash[:]),
		Events:  res.Events,
	}
}

// IsClaimed reports a tec result: well formed but rejected by ledger state.
func (r TxResult) IsClaimed() bool {
	return r.Code.IsTec()
}
