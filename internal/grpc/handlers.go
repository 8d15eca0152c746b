package grpc

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/timelock"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/core/tx/swap"
	"github.com/LeJamon/goswapd/internal/events"
)

// SubmitRequest carries one signed transaction. Tx holds the exact signed
// bytes and is base64 on the wire so that it survives re-encoding.
type SubmitRequest struct {
	Tx         []byte         `json:"tx"`
	Signatures []tx.Signature `json:"signatures"`
}

func (r *SubmitRequest) envelope() *tx.Envelope {
	return &tx.Envelope{Tx: r.Tx, Signatures: r.Signatures}
}

// SubmitResponse describes an applied transition.
type SubmitResponse struct {
	EngineResult string         `json:"engine_result"`
	TxHash       string         `json:"tx_hash"`
	SwapID       string         `json:"swap_id"`
	Tick         uint64         `json:"tick"`
	Events       []events.Event `json:"events"`
}

// GetSwapRequest selects a swap by SwapID, or by Initiator and Commitment.
type GetSwapRequest struct {
	SwapID     string `json:"swap_id,omitempty"`
	Initiator  string `json:"initiator,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

// SwapResponse is an active swap record.
type SwapResponse struct {
	SwapID      string      `json:"swap_id"`
	Initiator   string      `json:"initiator"`
	Redeemer    string      `json:"redeemer"`
	Commitment  string      `json:"commitment"`
	Amount      drops.Drops `json:"amount"`
	Deposit     drops.Drops `json:"deposit"`
	ExpiryTick  uint64      `json:"expiry_tick"`
	CreatedTick uint64      `json:"created_tick"`
	CreatedTxID string      `json:"created_tx_id"`
	Expired     bool        `json:"expired"`
	ExpiresIn   uint64      `json:"expires_in"`
	Tick        uint64      `json:"tick"`
}

// GetAccountRequest selects an account root by address.
type GetAccountRequest struct {
	Address string `json:"address"`
}

// AccountResponse is an account root. BalanceUnits is Balance in whole
// units with six decimals.
type AccountResponse struct {
	Address      string      `json:"address"`
	Balance      drops.Drops `json:"balance"`
	BalanceUnits string      `json:"balance_units"`
	Sequence     uint32      `json:"sequence"`
	Tick         uint64      `json:"tick"`
}

// GetTickRequest has no fields.
type GetTickRequest struct{}

// TickResponse carries the current logical tick.
type TickResponse struct {
	Tick uint64 `json:"tick"`
}

// WatchSwapsRequest filters a notification stream. Empty fields match all.
type WatchSwapsRequest struct {
	SwapID  string        `json:"swap_id,omitempty"`
	Account string        `json:"account,omitempty"`
	Types   []events.Type `json:"types,omitempty"`
}

// Initiate applies a SwapInitiate transaction.
func (s *Server) Initiate(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	return s.submit(ctx, tx.TypeSwapInitiate, req)
}

// Redeem applies a SwapRedeem transaction.
func (s *Server) Redeem(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	return s.submit(ctx, tx.TypeSwapRedeem, req)
}

// Refund applies a SwapRefund transaction.
func (s *Server) Refund(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	return s.submit(ctx, tx.TypeSwapRefund, req)
}

// InstantRefund applies a SwapInstantRefund transaction.
func (s *Server) InstantRefund(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	return s.submit(ctx, tx.TypeSwapInstantRefund, req)
}

func (s *Server) submit(ctx context.Context, want tx.Type, req *SubmitRequest) (*SubmitResponse, error) {
	ledger, err := s.ledger()
	if err != nil {
		return nil, err
	}
	if len(req.Tx) == 0 {
		return nil, status.Error(codes.InvalidArgument, "tx is required")
	}

	env := req.envelope()
	decoded, err := env.Decode()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode transaction: %v", err)
	}
	if got := decoded.TxType(); got != want {
		return nil, status.Errorf(codes.InvalidArgument, "transaction type %s does not match %s", got, want)
	}

	res := ledger.Submit(ctx, env)
	if err := res.Err(); err != nil {
		return nil, statusFromResult(res.Result, err)
	}

	resp := &SubmitResponse{
		EngineResult: res.Result.String(),
		TxHash:       strings.ToUpper(hex.EncodeToString(res.TxHash[:])),
		Tick:         ledger.CurrentTick(),
		Events:       res.Events,
	}
	if len(res.Events) > 0 {
		resp.SwapID = res.Events[0].SwapID
		resp.Tick = res.Events[0].Tick
	}
	return resp, nil
}

// statusFromResult maps a rejected transaction onto a gRPC status. The
// message starts with the result name, see ResultFromError.
func statusFromResult(r tx.Result, err error) error {
	code := codes.Unknown
	switch {
	case errors.Is(err, swap.ErrRecordNotFound):
		code = codes.NotFound
	case errors.Is(err, swap.ErrDuplicateSwap):
		code = codes.AlreadyExists
	case errors.Is(err, swap.ErrInvalidIdentity):
		code = codes.PermissionDenied
	case errors.Is(err, swap.ErrInvalidSecret),
		errors.Is(err, swap.ErrRefundBeforeExpiry),
		errors.Is(err, swap.ErrInsufficientFunds):
		code = codes.FailedPrecondition
	case r == tx.TefBAD_AUTH:
		code = codes.PermissionDenied
	case r == tx.TefBAD_SIGNATURE:
		code = codes.Unauthenticated
	case r == tx.TefPAST_SEQ, r == tx.TerPRE_SEQ:
		code = codes.Aborted
	case r == tx.TerNO_ACCOUNT:
		code = codes.FailedPrecondition
	case r == tx.TefINTERNAL:
		code = codes.Internal
	case r.IsTem():
		code = codes.InvalidArgument
	}
	return status.Error(code, err.Error())
}

// ResultFromError recovers the transaction result carried by a status
// returned from a submit method.
func ResultFromError(err error) (tx.Result, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return tx.TesSUCCESS, false
	}
	name, _, _ := strings.Cut(st.Message(), ":")
	return tx.ResultFromName(name)
}

// GetSwap returns an active swap record.
func (s *Server) GetSwap(ctx context.Context, req *GetSwapRequest) (*SwapResponse, error) {
	ledger, err := s.ledger()
	if err != nil {
		return nil, err
	}

	id := req.SwapID
	if id == "" {
		if id, err = swapIDFromParts(req.Initiator, req.Commitment); err != nil {
			return nil, err
		}
	}

	record, err := ledger.Swap(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrSwapNotFound) {
			return nil, status.Errorf(codes.NotFound, "swap %s not found", id)
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return swapResponse(id, record, ledger.CurrentTick()), nil
}

func swapIDFromParts(initiator, commitment string) (string, error) {
	if initiator == "" || commitment == "" {
		return "", status.Error(codes.InvalidArgument, "swap_id or initiator and commitment are required")
	}
	id, err := addresscodec.DecodeAddress(initiator)
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "invalid initiator: %v", err)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(commitment, "0x"))
	if err != nil || len(raw) != 32 {
		return "", status.Error(codes.InvalidArgument, "commitment must be 32 hex encoded bytes")
	}
	var c [32]byte
	copy(c[:], raw)
	return swap.ID(id, c), nil
}

func swapResponse(id string, s *entry.Swap, tick uint64) *SwapResponse {
	return &SwapResponse{
		SwapID:      id,
		Initiator:   addresscodec.EncodeAccountID(s.Initiator),
		Redeemer:    addresscodec.EncodeAccountID(s.Redeemer),
		Commitment:  hex.EncodeToString(s.Commitment[:]),
		Amount:      s.Amount,
		Deposit:     s.Deposit,
		ExpiryTick:  s.ExpiryTick,
		CreatedTick: s.CreatedTick,
		CreatedTxID: hex.EncodeToString(s.CreatedTxID[:]),
		Expired:     timelock.Expired(s.ExpiryTick, tick),
		ExpiresIn:   timelock.Remaining(s.ExpiryTick, tick),
		Tick:        tick,
	}
}

// GetAccount returns an account root.
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountResponse, error) {
	ledger, err := s.ledger()
	if err != nil {
		return nil, err
	}
	if !addresscodec.IsValidAddress(req.Address) {
		return nil, status.Errorf(codes.InvalidArgument, "invalid address %q", req.Address)
	}

	root, err := ledger.Account(ctx, req.Address)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return nil, status.Errorf(codes.NotFound, "account %s not found", req.Address)
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &AccountResponse{
		Address:      req.Address,
		Balance:      root.Balance,
		BalanceUnits: root.Balance.Decimal(),
		Sequence:     root.Sequence,
		Tick:         ledger.CurrentTick(),
	}, nil
}

// GetTick returns the current logical tick.
func (s *Server) GetTick(ctx context.Context, _ *GetTickRequest) (*TickResponse, error) {
	ledger, err := s.ledger()
	if err != nil {
		return nil, err
	}
	return &TickResponse{Tick: ledger.CurrentTick()}, nil
}
