// Package daemon provides the orderpace daemon lifecycle: component wiring,
// startup and graceful shutdown.
//
// STARTUP ORDER:
//  1. Bind the API listener so a taken port fails before any work is accepted
//  2. Build the task registry, failure exporter and metrics
//  3. Start the engine (dispatcher and batch workers)
//  4. Start the HTTP API on the pre-bound listener
//
// SHUTDOWN ORDER:
// The API stops first so no new batch can arrive, then the engine cancels every
// running task and waits for store calls that are already in flight. Records
// that never started are reported as cancelled.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/concave-dev/orderpace/cmd/orderpaced/config"
	"github.com/concave-dev/orderpace/internal/api"
	"github.com/concave-dev/orderpace/internal/api/handlers"
	"github.com/concave-dev/orderpace/internal/engine"
	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/metrics"
	"github.com/concave-dev/orderpace/internal/netutil"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/concave-dev/orderpace/internal/version"
)

// services holds the running components of one daemon instance
type services struct {
	engine *engine.Engine
	server *api.Server
}

// buildEngineConfig converts daemon config to engine config
func buildEngineConfig(cfg *config.Config) engine.Config {
	engineConfig := engine.DefaultConfig()

	engineConfig.Concurrency = cfg.Concurrency
	engineConfig.BatchWorkers = cfg.BatchWorkers
	engineConfig.QueueSize = cfg.QueueSize
	engineConfig.RequestTimeout = cfg.RequestTimeout
	engineConfig.UserAgent = cfg.UserAgent
	if engineConfig.UserAgent == "" {
		engineConfig.UserAgent = "orderpaced/" + version.DaemonVersion
	}

	return engineConfig
}

// buildAPIConfig converts daemon config to API config
func buildAPIConfig(cfg *config.Config, eng *engine.Engine, resolver handlers.VariantLookup) *api.Config {
	apiConfig := api.DefaultConfig()

	apiConfig.BindAddr = cfg.APIHost
	apiConfig.BindPort = cfg.APIPort
	apiConfig.Engine = eng
	apiConfig.Resolver = resolver
	apiConfig.MaxUploadBytes = cfg.MaxUploadBytes()
	apiConfig.Defaults = handlers.SubmitDefaults{
		VariantID:   cfg.VariantID,
		Store:       cfg.StoreURL,
		AccessToken: cfg.AccessToken,
	}

	return apiConfig
}

// start builds and starts every component. On error, whatever was already
// started is stopped again.
func start(cfg *config.Config) (*services, error) {
	listener, err := netutil.BindTCP(cfg.APIHost, cfg.APIPort)
	if err != nil {
		var inUse *netutil.AddressInUseError
		if errors.As(err, &inUse) {
			logging.Error("Port %d is already in use - is another orderpaced running?", cfg.APIPort)
		}
		return nil, fmt.Errorf("failed to bind API listener: %w", err)
	}

	exporter, err := export.New(cfg.DataDir)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}
	logging.Info("Failure artifacts will be written to %s", exporter.Dir())

	eng, err := engine.New(buildEngineConfig(cfg), tasks.NewRegistry(), exporter, metrics.New())
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	resolver := shopify.NewVariantResolver(cfg.RequestTimeout)

	server, err := api.NewServerWithListener(buildAPIConfig(cfg, eng, resolver), listener)
	if err != nil {
		listener.Close()
		_ = eng.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}
	if err := server.Start(); err != nil {
		_ = eng.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to start API server: %w", err)
	}

	return &services{engine: eng, server: server}, nil
}

// stop shuts the API down first, then the engine. Both share ctx's deadline.
func (s *services) stop(ctx context.Context) error {
	var errs []error

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
		errs = append(errs, err)
	}
	if err := s.engine.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down engine: %v", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Run starts the daemon and blocks until SIGINT, SIGTERM or ctx cancellation,
// then shuts down gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config) error {
	logging.Info("Starting orderpace daemon v%s", version.DaemonVersion)
	if cfg.ConfigFile != "" {
		logging.Info("Loaded configuration from %s", cfg.ConfigFile)
	}

	svc, err := start(cfg)
	if err != nil {
		return err
	}

	if cfg.StoreURL == "" || cfg.AccessToken == "" {
		logging.Warn("No default store credentials configured - every batch must carry store_url and access_token")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logging.Success("orderpace daemon started successfully")
	logging.Info("  - HTTP API: %s", svc.server.Addr())
	logging.Info("  - Concurrency: %d per batch, %d batch worker(s), queue %d",
		cfg.Concurrency, cfg.BatchWorkers, cfg.QueueSize)
	logging.Info("Daemon running... Press Ctrl+C to shutdown")

	select {
	case sig := <-sigCh:
		logging.Info("Received signal: %v", sig)
	case <-ctx.Done():
		logging.Info("Context cancelled")
	}

	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := svc.stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}

	logging.Success("orderpace daemon shutdown completed")
	return nil
}
