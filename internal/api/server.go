// Package api provides the HTTP API server of the orderpace daemon. The
// server exposes batch submission, task status, cancellation and failure
// downloads via REST endpoints, plus Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/orderpace/internal/api/handlers"
	"github.com/concave-dev/orderpace/internal/engine"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/version"
	"github.com/gin-gonic/gin"
)

// Represents the orderpace API server
type Server struct {
	engine         *engine.Engine
	resolver       handlers.VariantLookup
	defaults       handlers.SubmitDefaults
	maxUploadBytes int64
	httpServer     *http.Server
	listener       net.Listener
	bindAddr       string
	bindPort       int
	startTime      time.Time
}

// NewServer creates a new API server instance
func NewServer(config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid API config: %w", err)
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		engine:         config.Engine,
		resolver:       config.Resolver,
		defaults:       config.Defaults,
		maxUploadBytes: config.MaxUploadBytes,
		bindAddr:       config.BindAddr,
		bindPort:       config.BindPort,
		startTime:      time.Now(),
	}, nil
}

// NewServerWithListener creates a server that serves on an already bound
// listener. The bind address in config is ignored.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	s, err := NewServer(config)
	if err != nil {
		return nil, err
	}
	s.listener = listener
	return s, nil
}

// Handler builds the router with every middleware and route.
func (s *Server) Handler() http.Handler {
	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.MaxMultipartMemory = s.maxUploadBytes

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start starts the API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.bindAddr, s.bindPort)

	listener := s.listener
	if listener == nil {
		// Bind first to catch errors immediately
		var err error
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to bind to %s: %w", addr, err)
		}
	}

	logging.Info("Starting HTTP API server on %s", listener.Addr())

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Addr returns the address the server listens on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return fmt.Sprintf("%s:%d", s.bindAddr, s.bindPort)
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// getHandlerHealth is a health endpoint handler factory
func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(version.DaemonVersion, s.startTime, s.engine)
}
