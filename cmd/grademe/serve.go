// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GradeMe Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dumindu-Test/GradeMe/internal/auth"
	"github.com/dumindu-Test/GradeMe/internal/config"
	"github.com/dumindu-Test/GradeMe/internal/fixture"
	"github.com/dumindu-Test/GradeMe/internal/logging"
	"github.com/dumindu-Test/GradeMe/internal/observability"
	"github.com/dumindu-Test/GradeMe/internal/web"
)

// shutdownTimeout bounds graceful shutdown of the listeners.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the account HTTP API and the guarded page routes.

With --store memory the service keeps accounts in process and seeds them from
--fixture, or from the built-in demo accounts when no fixture is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, cmd.Flags())
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	config.RegisterServeFlags(cmd.Flags())
	return cmd
}

// runServeWithDeps runs the API until a shutdown signal arrives or ctx is
// cancelled. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.SetDefault(serviceName, version, cfg.Log.Format)
	logger.Info("starting grademe",
		"addr", cfg.HTTP.Addr,
		"store", cfg.Store.Driver,
		"log_format", cfg.Log.Format)
	if cfg.UsesDevSecret() {
		logger.Warn("using the built-in development JWT secret; set auth.jwt_secret or JWT_SECRET in production")
	}

	backend, err := openBackend(ctx, cfg, deps, logger)
	if err != nil {
		return err
	}
	defer backend.close()

	svc, err := newAuthService(cfg, backend.users, backend.profiles, logger)
	if err != nil {
		return err
	}

	if backend.memory != nil {
		if err := seedMemory(ctx, cfg, svc, logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, backend.ready)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	router, err := web.NewRouter(svc, web.Options{
		Logger:          logger,
		Metrics:         metrics,
		SecureCookies:   cfg.HTTP.SecureCookies,
		SessionLifetime: cfg.Auth.SessionLifetime,
	})
	if err != nil {
		stopServer(obsServer, logger, "observability")
		return err
	}

	opts := []web.ServerOption{web.WithServerLogger(logger)}
	if cfg.HTTP.TLSCert != "" {
		opts = append(opts, web.WithTLS(cfg.HTTP.TLSCert, cfg.HTTP.TLSKey))
	}
	webServer := deps.WebServerFactory(cfg.HTTP.Addr, router, opts...)
	webErrChan, err := webServer.Start()
	if err != nil {
		stopServer(obsServer, logger, "observability")
		return oops.With("operation", "start web server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web", logger)

	sigChan := make(chan os.Signal, 1)
	stopSignals := deps.SignalNotifier(sigChan)
	defer stopSignals()

	cmd.Printf("GradeMe listening on %s\n", webServer.Addr())
	logger.Info("grademe ready", "addr", webServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	stopServer(webServer, logger, "web")
	stopServer(obsServer, logger, "observability")

	logger.Info("shutdown complete")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

// stopServer stops srv with the shutdown timeout. A nil srv is ignored.
func stopServer(srv stopper, logger *slog.Logger, name string) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

// seedMemory loads the configured fixture, or the demo accounts, into a fresh
// memory store.
func seedMemory(ctx context.Context, cfg *config.Config, svc *auth.Service, logger *slog.Logger) error {
	f := fixture.Demo()
	source := "demo"
	if cfg.Store.Fixture != "" {
		loaded, err := fixture.Load(cfg.Store.Fixture)
		if err != nil {
			return err
		}
		f, source = loaded, cfg.Store.Fixture
	}

	res, err := fixture.Apply(ctx, svc, f)
	if err != nil {
		return err
	}
	logger.Info("memory store seeded",
		"fixture", source,
		"created", len(res.Created),
		"skipped", len(res.Skipped))
	return nil
}

// notifyShutdownSignals relays SIGINT and SIGTERM to c.
func notifyShutdownSignals(c chan<- os.Signal) func() {
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	return func() { signal.Stop(c) }
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
