package rpc_handlers

import (
	"encoding/json"
	"errors"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// AccountInfoMethod handles the account_info RPC method
type AccountInfoMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *AccountInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string `json:"account"`
	}
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if _, rpcErr := decodeAccount("account", request.Account); rpcErr != nil {
		return nil, rpcErr
	}

	root, err := m.Services.Ledger.Account(ctx.Context, request.Account)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return nil, rpc_types.RpcErrorActNotFound("Account not found.")
		}
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	return map[string]interface{}{
		"account_data": map[string]interface{}{
			"LedgerEntryType": entry.TypeAccountRoot.String(),
			"Account":         addresscodec.EncodeAccountID(root.Account),
			"Balance":         root.Balance,
			"Sequence":        root.Sequence,
		},
		"ledger_current_index": m.Services.Ledger.CurrentTick(),
	}, nil
}

func (m *AccountInfoMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *AccountInfoMethod) SupportedApiVersions() []int {
	return allVersions
}
