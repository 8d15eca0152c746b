package rpc_handlers

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// SwapEntryMethod handles the swap_entry RPC method. The swap is named
// either by swap_id or by initiator and commitment.
type SwapEntryMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *SwapEntryMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		SwapID     string `json:"swap_id,omitempty"`
		Initiator  string `json:"initiator,omitempty"`
		Commitment string `json:"commitment,omitempty"`
	}
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	id := request.SwapID
	if id == "" {
		if request.Initiator == "" || request.Commitment == "" {
			return nil, rpc_types.RpcErrorInvalidParams("Provide swap_id, or initiator and commitment")
		}
		initiator, rpcErr := decodeAccount("initiator", request.Initiator)
		if rpcErr != nil {
			return nil, rpcErr
		}
		commitment, rpcErr := decodeHash32("commitment", request.Commitment)
		if rpcErr != nil {
			return nil, rpcErr
		}
		id = keylet.Swap(initiator, commitment).String()
	} else if _, ok := keylet.Parse(id); !ok {
		return nil, rpc_types.RpcErrorInvalidField("Invalid field 'swap_id'")
	}

	tick := m.Services.Ledger.CurrentTick()
	swap, err := m.Services.Ledger.Swap(ctx.Context, id)
	if err != nil {
		if errors.Is(err, service.ErrSwapNotFound) {
			return nil, rpc_types.RpcErrorEntryNotFound("Swap not found: " + id)
		}
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	return map[string]interface{}{
		"swap_id":              id,
		"node":                 swapJSON(swap, tick),
		"ledger_current_index": tick,
	}, nil
}

func (m *SwapEntryMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SwapEntryMethod) SupportedApiVersions() []int {
	return allVersions
}
