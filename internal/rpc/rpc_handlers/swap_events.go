package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/events"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
)

const defaultEventsLimit = 200

// SwapEventsMethod handles the swap_events RPC method. It pages through
// the journal with a seq marker.
type SwapEventsMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *SwapEventsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if m.Services.Journal == nil {
		return nil, rpc_types.RpcErrorNotEnabled("The event journal is not enabled")
	}

	var request struct {
		SwapID  string `json:"swap_id,omitempty"`
		Account string `json:"account,omitempty"`
		Type    string `json:"type,omitempty"`
		Marker  int64  `json:"marker,omitempty"`
		Limit   int    `json:"limit,omitempty"`
	}
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	if request.SwapID != "" {
		if _, ok := keylet.Parse(request.SwapID); !ok {
			return nil, rpc_types.RpcErrorInvalidField("Invalid field 'swap_id'")
		}
	}
	if request.Account != "" {
		if _, rpcErr := decodeAccount("account", request.Account); rpcErr != nil {
			return nil, rpcErr
		}
	}
	switch events.Type(request.Type) {
	case "", events.TypeInitiated, events.TypeRedeemed, events.TypeRefunded, events.TypeInstantRefunded:
	default:
		return nil, rpc_types.RpcErrorInvalidField("Invalid field 'type'")
	}
	if request.Marker < 0 {
		return nil, rpc_types.RpcErrorInvalidField("Invalid field 'marker'")
	}

	limit := request.Limit
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > relationaldb.MaxQueryLimit {
		limit = relationaldb.MaxQueryLimit
	}

	records, err := m.Services.Journal.ListEvents(ctx.Context, relationaldb.EventQuery{
		SwapID:   request.SwapID,
		Account:  request.Account,
		Type:     events.Type(request.Type),
		AfterSeq: request.Marker,
		Limit:    limit,
	})
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to query journal: " + err.Error())
	}

	response := map[string]interface{}{
		"events": records,
		"limit":  limit,
	}
	if len(records) == limit {
		response["marker"] = records[len(records)-1].Seq
	}
	return response, nil
}

func (m *SwapEventsMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SwapEventsMethod) SupportedApiVersions() []int {
	return allVersions
}
