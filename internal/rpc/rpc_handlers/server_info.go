package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// ServerInfoMethod handles the server_info RPC method
type ServerInfoMethod struct {
	Services *rpc_types.ServiceContainer
	Version  string
}

func (m *ServerInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	info := m.Services.Ledger.GetServerInfo()

	return map[string]interface{}{
		"info": map[string]interface{}{
			"build_version":        m.Version,
			"ledger_current_index": info.Tick,
			"applied":              info.Applied,
			"rejected":             info.Rejected,
			"swap_deposit":         info.SwapDeposit,
			"max_expiry_offset":    info.MaxExpiryOffset,
			"cached_entries":       info.CachedEntries,
			"journal":              m.Services.Journal != nil,
		},
	}, nil
}

func (m *ServerInfoMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *ServerInfoMethod) SupportedApiVersions() []int {
	return allVersions
}
