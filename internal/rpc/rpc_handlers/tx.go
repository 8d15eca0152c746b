package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
	"github.com/LeJamon/goswapd/internal/storage/txstore"
)

// TxMethod handles the tx RPC method. It returns an applied transaction
// from the archive.
type TxMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *TxMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if m.Services.Archive == nil {
		return nil, rpc_types.RpcErrorNotEnabled("The transaction archive is not enabled")
	}

	var request struct {
		Transaction string `json:"transaction"`
	}
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if request.Transaction == "" {
		return nil, rpc_types.RpcErrorInvalidParams("Missing field 'transaction'")
	}
	hash, rpcErr := decodeHash32("transaction", request.Transaction)
	if rpcErr != nil {
		return nil, rpcErr
	}

	rec, err := m.Services.Archive.Get(ctx.Context, hash)
	if err != nil {
		if errors.Is(err, txstore.ErrNotFound) {
			return nil, rpc_types.RpcErrorTxnNotFound("Transaction not found.")
		}
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	response := map[string]interface{}{
		"hash":          strings.ToUpper(hex.EncodeToString(rec.Hash[:])),
		"tx_json":       json.RawMessage(rec.Tx),
		"signatures":    rec.Signatures,
		"engine_result": rec.Result,
		"ledger_index":  rec.Tick,
		"validated":     true,
	}
	if len(rec.Events) > 0 {
		response["events"] = rec.Events
	}
	return response, nil
}

func (m *TxMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *TxMethod) SupportedApiVersions() []int {
	return allVersions
}
