package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// SubmitMethod handles the submit RPC method
type SubmitMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *SubmitMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		// TxBlob is the hex encoding of the exact signed transaction bytes
		TxBlob string `json:"tx_blob,omitempty"`
		// TxJson is used verbatim when TxBlob is absent
		TxJson     json.RawMessage `json:"tx_json,omitempty"`
		Signatures []tx.Signature  `json:"signatures,omitempty"`
	}

	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	env := &tx.Envelope{Signatures: request.Signatures}
	switch {
	case request.TxBlob != "":
		blob, err := hex.DecodeString(request.TxBlob)
		if err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid tx_blob: " + err.Error())
		}
		env.Tx = blob
	case len(request.TxJson) > 0:
		env.Tx = request.TxJson
	default:
		return nil, rpc_types.RpcErrorInvalidParams("Either tx_blob or tx_json must be provided")
	}

	res := m.Services.Ledger.Submit(ctx.Context, env)
	var archiveErr error
	if res.Applied && m.Services.Archive != nil {
		tick := m.Services.Ledger.CurrentTick()
		if len(res.Events) > 0 {
			tick = res.Events[0].Tick
		}
		archiveErr = m.Services.Archive.Put(ctx.Context, env, res, tick)
	}

	response := map[string]interface{}{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
		"tx_hash":               strings.ToUpper(hex.EncodeToString(res.TxHash[:])),
		"ledger_current_index":  m.Services.Ledger.CurrentTick(),
	}
	if res.Message == "" {
		response["engine_result_message"] = res.Result.Message()
	}
	if len(res.Events) > 0 {
		response["events"] = res.Events
	}
	// The state change stands even when archiving fails.
	if archiveErr != nil {
		response["archive_error"] = archiveErr.Error()
	}
	return response, nil
}

func (m *SubmitMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SubmitMethod) SupportedApiVersions() []int {
	return allVersions
}
