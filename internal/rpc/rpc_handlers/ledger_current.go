package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// LedgerCurrentMethod handles the ledger_current RPC method
type LedgerCurrentMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *LedgerCurrentMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return map[string]interface{}{
		"ledger_current_index": m.Services.Ledger.CurrentTick(),
	}, nil
}

func (m *LedgerCurrentMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *LedgerCurrentMethod) SupportedApiVersions() []int {
	return allVersions
}
