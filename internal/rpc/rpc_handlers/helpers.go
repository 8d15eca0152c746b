package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// allVersions is the version list shared by every method
var allVersions = []int{rpc_types.ApiVersion1}

// parseParams unmarshals params into request when present
func parseParams(params json.RawMessage, request interface{}) *rpc_types.RpcError {
	if params == nil {
		return nil
	}
	if err := json.Unmarshal(params, request); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// decodeHash32 parses a 64 character hex string
func decodeHash32(field, s string) ([32]byte, *rpc_types.RpcError) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		return out, rpc_types.RpcErrorInvalidField("Invalid field '" + field + "', expected 32 hex-encoded bytes")
	}
	copy(out[:], b)
	return out, nil
}

func decodeAccount(field, address string) ([20]byte, *rpc_types.RpcError) {
	if address == "" {
		return [20]byte{}, rpc_types.RpcErrorInvalidParams("Missing field '" + field + "'")
	}
	id, err := addresscodec.DecodeAddress(address)
	if err != nil {
		return id, rpc_types.RpcErrorActMalformed("Account malformed: " + address)
	}
	return id, nil
}

// swapJSON renders a swap record. tick decides the expiry fields.
func swapJSON(s *entry.Swap, tick uint64) map[string]interface{} {
	node := map[string]interface{}{
		"LedgerEntryType": entry.TypeSwap.String(),
		"Initiator":       addresscodec.EncodeAccountID(s.Initiator),
		"Redeemer":        addresscodec.EncodeAccountID(s.Redeemer),
		"Commitment":      hex.EncodeToString(s.Commitment[:]),
		"Amount":          s.Amount,
		"Deposit":         s.Deposit,
		"ExpiryTick":      s.ExpiryTick,
		"CreatedTick":     s.CreatedTick,
		"CreatedTxID":     hex.EncodeToString(s.CreatedTxID[:]),
		"Expired":         timelock.Expired(s.ExpiryTick, tick),
	}
	if remaining := timelock.Remaining(s.ExpiryTick, tick); remaining > 0 {
		node["ExpiresIn"] = remaining
	}
	return node
}
