package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goswapd/internal/core/ledger/entry"
	"github.com/LeJamon/goswapd/internal/core/tx"
)

// LedgerService defines the ledger operations needed by the gRPC handlers.
// It is implemented by *service.Service.
type LedgerService interface {
	Submit(ctx context.Context, env *tx.Envelope) tx.ApplyResult
	Swap(ctx context.Context, id string) (*entry.Swap, error)
	Account(ctx context.Context, address string) (*entry.AccountRoot, error)
	CurrentTick() uint64
}

// Server represents the gRPC server for swap operations. It is also an
// events.Sink feeding WatchSwaps streams.
type Server struct {
	mu sync.RWMutex

	// grpcServer is the underlying gRPC server
	grpcServer *grpc.Server

	// ledgerService provides access to ledger operations
	ledgerService LedgerService

	config *ServerConfig
	logger *slog.Logger

	// listener is the network listener while serving
	listener net.Listener

	subsMu sync.RWMutex
	subs   map[*subscriber]struct{}

	// done is closed when shutdown starts so that streams end
	done     chan struct{}
	doneOnce sync.Once
}

// NewServer creates a new gRPC server with logging and recovery interceptors.
// The ledger service may be set later with SetLedgerService.
func NewServer(cfg *ServerConfig, ledgerSvc LedgerService, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "grpc")

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.UnaryInterceptor(UnaryServerInterceptor(logger)),
		grpc.StreamInterceptor(StreamServerInterceptor(logger)),
	}

	s := &Server{
		grpcServer:    grpc.NewServer(opts...),
		ledgerService: ledgerSvc,
		config:        cfg,
		logger:        logger,
		subs:          make(map[*subscriber]struct{}),
		done:          make(chan struct{}),
	}
	s.grpcServer.RegisterService(&serviceDesc, s)
	return s, nil
}

// Serve accepts connections on ln until ctx is cancelled, then stops
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.Stop()
	return <-errCh
}

// Stop ends every stream and stops the server, waiting at most the
// shutdown timeout for in-flight calls.
func (s *Server) Stop() {
	s.doneOnce.Do(func() { close(s.done) })

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		<-stopped
		return
	}
	select {
	case <-stopped:
	case <-time.After(timeout):
		s.logger.Warn("graceful stop timed out", "timeout", timeout)
		s.grpcServer.Stop()
	}
}

// Address returns the address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetLedgerService updates the ledger service.
// This should only be called before serving.
func (s *Server) SetLedgerService(svc LedgerService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgerService = svc
}

func (s *Server) ledger() (LedgerService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ledgerService == nil {
		return nil, status.Error(codes.Unavailable, "ledger service not available")
	}
	return s.ledgerService, nil
}

// UnaryServerInterceptor logs every call and turns handler panics into
// codes.Internal.
func UnaryServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			logger.Debug("grpc call",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration", time.Since(start))
		}()
		return handler(ctx, req)
	}
}

// StreamServerInterceptor logs streaming calls and recovers from panics.
func StreamServerInterceptor(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("stream panic", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}
			logger.Debug("grpc stream closed",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration", time.Since(start))
		}()
		return handler(srv, ss)
	}
}
