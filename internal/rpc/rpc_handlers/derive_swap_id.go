package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/core/hashlock"
	"github.com/LeJamon/goswapd/internal/core/ledger/keylet"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
)

// DeriveSwapIDMethod handles the derive_swap_id RPC method. It computes
// the address a swap by initiator under commitment (or the commitment of
// secret) will occupy, without touching the ledger.
type DeriveSwapIDMethod struct{}

func (m *DeriveSwapIDMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Initiator  string `json:"initiator"`
		Commitment string `json:"commitment,omitempty"`
		Secret     string `json:"secret,omitempty"`
	}
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	initiator, rpcErr := decodeAccount("initiator", request.Initiator)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var commitment [32]byte
	switch {
	case request.Commitment != "":
		commitment, rpcErr = decodeHash32("commitment", request.Commitment)
		if rpcErr != nil {
			return nil, rpcErr
		}
	case request.Secret != "":
		secret, err := hex.DecodeString(request.Secret)
		if err != nil || len(secret) == 0 {
			return nil, rpc_types.RpcErrorInvalidField("Invalid field 'secret'")
		}
		commitment = hashlock.Commit(secret)
	default:
		return nil, rpc_types.RpcErrorInvalidParams("Provide commitment or secret")
	}

	return map[string]interface{}{
		"swap_id":    keylet.Swap(initiator, commitment).String(),
		"commitment": hex.EncodeToString(commitment[:]),
	}, nil
}

func (m *DeriveSwapIDMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *DeriveSwapIDMethod) SupportedApiVersions() []int {
	return allVersions
}
