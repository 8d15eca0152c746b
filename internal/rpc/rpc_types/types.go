package rpc_types

import (
	"context"
	"encoding/json"

	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/core/tx"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	"github.com/LeJamon/goswapd/internal/storage/txstore"
)

// API versions
const (
	ApiVersion1 = 1

	DefaultApiVersion = ApiVersion1
)

// Role-based access control
type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	ClientIP   string
}

// MethodHandler interface - all RPC methods implement this
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// MethodRegistry maps method names to handlers
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}

// LedgerService is the ledger surface exposed over RPC.
type LedgerService interface {
	Submit(ctx context.Context, env *tx.Envelope) tx.ApplyResult
	Swap(ctx context.Context, id string) (*entry.Swap, error)
	Account(ctx context.Context, address string) (*entry.AccountRoot, error)
	CurrentTick() uint64
	AcceptLedger(ctx context.Context) (uint64, error)
	GetServerInfo() service.ServerInfo
}

// EventJournal answers historical notification queries.
type EventJournal interface {
	ListEvents(ctx context.Context, q relationaldb.EventQuery) ([]relationaldb.EventRecord, error)
}

// TxArchive stores applied envelopes for lookup by hash.
type TxArchive interface {
	Put(ctx context.Context, env *tx.Envelope, res tx.ApplyResult, tick uint64) error
	Get(ctx context.Context, hash [32]byte) (*txstore.Record, error)
}

// ServiceContainer holds references to the services used by handlers.
// Journal and Archive may be nil when they are not configured.
type ServiceContainer struct {
	Ledger  LedgerService
	Journal EventJournal
	Archive TxArchive
}
