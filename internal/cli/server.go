package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goswapd/internal/config"
	"github.com/LeJamon/goswapd/internal/di"
	"github.com/LeJamon/goswapd/internal/rpc"
)

type serverOptions struct {
	*rootOptions
	port     int
	bindAddr string
}

func newServerCmd(root *rootOptions) *cobra.Command {
	opts := &serverOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the swapd daemon",
		Long: `Start the swapd daemon which provides:
- HTTP JSON-RPC API endpoints
- WebSocket stream of swap notifications
- gRPC swap service with a notification stream
- Health check endpoint

This is the default command when no subcommand is specified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "port to listen on (overrides server.port)")
	cmd.Flags().StringVar(&opts.bindAddr, "bind", "", "address to bind to (overrides server.ip)")
	return cmd
}

func runServer(cmd *cobra.Command, opts *serverOptions) error {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.bindAddr != "" {
		cfg.Server.IP = opts.bindAddr
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := di.New()
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()
	provider := di.NewProvider(ctx, container, cfg, logger, Version)
	if err := provider.RegisterAll(); err != nil {
		return err
	}

	ledger, err := provider.GetLedgerService()
	if err != nil {
		return err
	}
	hub, err := provider.GetHub()
	if err != nil {
		return err
	}
	srv, err := provider.GetRPCServer()
	if err != nil {
		return err
	}

	gsrv, err := provider.GetGRPCServer()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Address(), err)
	}
	var gln net.Listener
	if gsrv != nil {
		gln, err = net.Listen("tcp", cfg.GRPC.Address())
		if err != nil {
			ln.Close()
			return fmt.Errorf("listen on %s: %w", cfg.GRPC.Address(), err)
		}
	}

	if !opts.quiet {
		out := cmd.OutOrStdout()
		addr := ln.Addr().String()
		fmt.Fprintln(out, "Starting swapd")
		fmt.Fprintln(out, "==============")
		fmt.Fprintf(out, "  - HTTP JSON-RPC: http://%s/\n", addr)
		if hub != nil {
			fmt.Fprintf(out, "  - WebSocket:     ws://%s/ws\n", addr)
		}
		if gln != nil {
			fmt.Fprintf(out, "  - gRPC:          %s\n", gln.Addr())
		}
		fmt.Fprintf(out, "  - Health Check:  http://%s/health\n", addr)
		fmt.Fprintf(out, "  - Storage:       %s (%s)\n", cfg.Database.Backend, cfg.Database.Path)
		if cfg.Journal.Enabled() {
			fmt.Fprintf(out, "  - Journal:       %s\n", cfg.Journal.Driver)
		}
		if cfg.Ledger.CloseInterval > 0 {
			fmt.Fprintf(out, "  - Auto close:    every %s\n", cfg.Ledger.CloseInterval)
		}
		fmt.Fprintf(out, "  - Current tick:  %d\n", ledger.CurrentTick())
		fmt.Fprintln(out)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rpc.Serve(gctx, ln, srv.Handler(hub), rpc.ServeOptions{
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			Logger:          logger,
		})
	})
	if gsrv != nil {
		g.Go(func() error {
			return gsrv.Serve(gctx, gln)
		})
	}
	if hub != nil {
		// Hijacked websocket connections are not closed by http.Server.Shutdown.
		g.Go(func() error {
			<-gctx.Done()
			hub.Close()
			return nil
		})
	}
	if interval := cfg.Ledger.CloseInterval; interval > 0 {
		g.Go(func() error {
			return ledger.Run(gctx, interval)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("swapd stopped", "tick", ledger.CurrentTick())
	return nil
}
