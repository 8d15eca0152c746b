package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LeJamon/goswapd/internal/config"
	"github.com/LeJamon/goswapd/internal/core/drops"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
	"github.com/LeJamon/goswapd/internal/events"
	swapgrpc "github.com/LeJamon/goswapd/internal/grpc"
	"github.com/LeJamon/goswapd/internal/rpc"
	"github.com/LeJamon/goswapd/internal/rpc/rpc_types"
	"github.com/LeJamon/goswapd/internal/storage/database"
	"github.com/LeJamon/goswapd/internal/storage/database/backend"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb/postgres"
	"github.com/LeJamon/goswapd/internal/storage/relationaldb/sqlite"
	"github.com/LeJamon/goswapd/internal/storage/txstore"
)

// Database names under the storage root.
const (
	// StateDBName holds swaps, accounts and the clock
	StateDBName = "state"
	// TxDBName holds the archive of applied envelopes
	TxDBName = "txs"
)

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	logger    *slog.Logger
	version   string
	ctx       context.Context
}

// NewProvider creates a new service provider. ctx bounds the work done
// while opening storage.
func NewProvider(ctx context.Context, container *Container, cfg *config.Config, logger *slog.Logger, version string) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		container: container,
		config:    cfg,
		logger:    logger,
		version:   version,
		ctx:       ctx,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)
	p.container.Register(ServiceLogger, p.logger)

	p.registerStorageBuilders()
	p.registerLedgerBuilders()
	p.registerRPCBuilders()

	return nil
}

// registerStorageBuilders registers storage service builders.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStorage, func(c *Container) (interface{}, error) {
		return backend.Open(p.config.Database.Backend, p.config.Database.Path)
	})

	p.container.RegisterBuilder(ServiceStateDB, func(c *Container) (interface{}, error) {
		m, err := c.Get(ServiceStorage)
		if err != nil {
			return nil, err
		}
		return m.(database.Manager).OpenDB(StateDBName)
	})

	p.container.RegisterBuilder(ServiceTxStore, func(c *Container) (interface{}, error) {
		m, err := c.Get(ServiceStorage)
		if err != nil {
			return nil, err
		}
		db, err := m.(database.Manager).OpenDB(TxDBName)
		if err != nil {
			return nil, err
		}
		return txstore.New(db, txstore.DefaultCacheSize)
	})

	// The journal resolves to nil when [journal] has no driver.
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		j := p.config.Journal
		if !j.Enabled() {
			return nil, nil
		}
		rc := j.RelationalConfig(p.config.Database.Path)
		logger := p.logger.With("component", "journal")
		switch j.Driver {
		case relationaldb.DriverSQLite:
			return sqlite.Open(p.ctx, rc, logger)
		case relationaldb.DriverPostgres:
			return postgres.Open(p.ctx, rc, logger)
		default:
			return nil, fmt.Errorf("unsupported journal driver %q", j.Driver)
		}
	})
}

// registerLedgerBuilders registers ledger service builders.
func (p *Provider) registerLedgerBuilders() {
	p.container.RegisterBuilder(ServiceSink, func(c *Container) (interface{}, error) {
		fanout := events.NewFanout(events.NewLogSink(p.logger.With("component", "events"), slog.LevelInfo))

		journal, err := p.GetJournal()
		if err != nil {
			return nil, err
		}
		if journal != nil {
			fanout.Add(relationaldb.Sink(journal))
		}

		hub, err := p.GetHub()
		if err != nil {
			return nil, err
		}
		if hub != nil {
			fanout.Add(hub)
		}

		gs, err := p.GetGRPCServer()
		if err != nil {
			return nil, err
		}
		if gs != nil {
			fanout.Add(gs)
		}
		return fanout, nil
	})

	p.container.RegisterBuilder(ServiceLedger, func(c *Container) (interface{}, error) {
		db, err := c.Get(ServiceStateDB)
		if err != nil {
			return nil, err
		}
		sink, err := c.Get(ServiceSink)
		if err != nil {
			return nil, err
		}
		svc, err := service.New(p.ctx, db.(database.DB), LedgerConfig(p.config), sink.(events.Sink), p.logger)
		if err != nil {
			return nil, err
		}
		// The gRPC server is built before the ledger because it is also a sink.
		gs, err := p.GetGRPCServer()
		if err != nil {
			return nil, err
		}
		if gs != nil {
			gs.SetLedgerService(svc)
		}
		return svc, nil
	})
}

// registerRPCBuilders registers RPC service builders.
func (p *Provider) registerRPCBuilders() {
	// The hub resolves to nil when the websocket stream is disabled.
	p.container.RegisterBuilder(ServiceHub, func(c *Container) (interface{}, error) {
		if !p.config.Server.WebSocket {
			return nil, nil
		}
		return rpc.NewHub(p.config.Server.SendQueueLimit, p.logger), nil
	})

	p.container.RegisterBuilder(ServiceRPCServer, func(c *Container) (interface{}, error) {
		ledger, err := p.GetLedgerService()
		if err != nil {
			return nil, err
		}
		archive, err := p.GetTxStore()
		if err != nil {
			return nil, err
		}
		services := &rpc_types.ServiceContainer{Ledger: ledger, Archive: archive}
		journal, err := p.GetJournal()
		if err != nil {
			return nil, err
		}
		if journal != nil {
			services.Journal = journal
		}
		return rpc.NewServer(services, rpc.Options{
			Admin:   p.config.Server.Admin,
			Version: p.version,
			Logger:  p.logger,
		}), nil
	})

	// The gRPC server resolves to nil when [grpc] is disabled. Its ledger is
	// attached by the ledger builder.
	p.container.RegisterBuilder(ServiceGRPC, func(c *Container) (interface{}, error) {
		if !p.config.GRPC.Enabled {
			return nil, nil
		}
		return swapgrpc.NewServer(GRPCConfig(p.config), nil, p.logger)
	})
}

// GRPCConfig maps the [grpc] section onto the gRPC server configuration.
func GRPCConfig(cfg *config.Config) *swapgrpc.ServerConfig {
	g := cfg.GRPC
	return &swapgrpc.ServerConfig{
		Address:          g.Address(),
		MaxRecvMsgSize:   g.MaxRecvMsgSize,
		MaxSendMsgSize:   g.MaxSendMsgSize,
		StreamQueueLimit: g.StreamQueueLimit,
		ShutdownTimeout:  g.ShutdownTimeout,
	}
}

// LedgerConfig maps the [ledger] and [genesis] sections onto the ledger
// service configuration.
func LedgerConfig(cfg *config.Config) service.Config {
	sc := service.DefaultConfig()
	sc.SwapDeposit = drops.Drops(cfg.Ledger.SwapDeposit)
	sc.MaxExpiryOffset = cfg.Ledger.MaxExpiryOffset
	sc.BatchWorkers = cfg.Ledger.BatchWorkers
	if cfg.Database.CacheSize > 0 {
		sc.CacheSize = cfg.Database.CacheSize
	}
	sc.Genesis.Tick = cfg.Genesis.Tick
	for _, a := range cfg.Genesis.Accounts {
		sc.Genesis.Accounts = append(sc.Genesis.Accounts, service.GenesisAccount{
			Address: a.Address,
			Balance: drops.Drops(a.Balance),
		})
	}
	return sc
}

// GetLedgerService returns the ledger service from the container.
func (p *Provider) GetLedgerService() (*service.Service, error) {
	svc, err := p.container.Get(ServiceLedger)
	if err != nil {
		return nil, err
	}
	return svc.(*service.Service), nil
}

// GetTxStore returns the transaction archive.
func (p *Provider) GetTxStore() (*txstore.Store, error) {
	s, err := p.container.Get(ServiceTxStore)
	if err != nil {
		return nil, err
	}
	return s.(*txstore.Store), nil
}

// GetJournal returns the event journal, or nil when it is disabled.
func (p *Provider) GetJournal() (*relationaldb.SQLStore, error) {
	j, err := p.container.Get(ServiceJournal)
	if err != nil || j == nil {
		return nil, err
	}
	return j.(*relationaldb.SQLStore), nil
}

// GetHub returns the websocket hub, or nil when it is disabled.
func (p *Provider) GetHub() (*rpc.Hub, error) {
	h, err := p.container.Get(ServiceHub)
	if err != nil || h == nil {
		return nil, err
	}
	return h.(*rpc.Hub), nil
}

// GetRPCServer returns the JSON-RPC server.
func (p *Provider) GetRPCServer() (*rpc.Server, error) {
	s, err := p.container.Get(ServiceRPCServer)
	if err != nil {
		return nil, err
	}
	return s.(*rpc.Server), nil
}

// GetGRPCServer returns the gRPC server, or nil when it is disabled.
func (p *Provider) GetGRPCServer() (*swapgrpc.Server, error) {
	s, err := p.container.Get(ServiceGRPC)
	if err != nil || s == nil {
		return nil, err
	}
	return s.(*swapgrpc.Server), nil
}

// GetConfig returns the configuration from the container.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}
