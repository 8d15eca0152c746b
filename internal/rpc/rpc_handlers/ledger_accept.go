package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// LedgerAcceptMethod handles the ledger_accept RPC method.
// It closes the current tick and opens the next one.
type LedgerAcceptMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *LedgerAcceptMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	closed, err := m.Services.Ledger.AcceptLedger(ctx.Context)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to accept ledger: " + err.Error())
	}

	return map[string]interface{}{
		"ledger_current_index": closed + 1,
	}, nil
}

func (m *LedgerAcceptMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

func (m *LedgerAcceptMethod) SupportedApiVersions() []int {
	return allVersions
}
