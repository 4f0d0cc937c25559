// Package api provides HTTP API server configuration for the orderpace daemon.
//
// This file defines the configuration structure and validation logic for the
// REST API server that accepts order batches and exposes task state to
// external clients such as orderpacectl. The configuration manages network
// binding parameters and the integration points with the batch engine, the
// failure exporter and the variant resolver.
//
// Configuration validation ensures that every required component is wired and
// that network settings are valid before the listener is opened.
package api

import (
	"fmt"

	"github.com/concave-dev/orderpace/internal/api/handlers"
	"github.com/concave-dev/orderpace/internal/config"
	"github.com/concave-dev/orderpace/internal/engine"
	"github.com/concave-dev/orderpace/internal/validate"
)

// Config holds all configuration parameters required for running the HTTP
// API server.
//
// The Config struct serves as a dependency injection container: the daemon
// builds the engine and resolver and hands them to the server, which keeps the
// server testable with an engine on a temporary directory.
type Config struct {
	BindAddr string // HTTP server bind address (e.g., "0.0.0.0")
	BindPort int    // HTTP server bind port

	Engine   *engine.Engine         // Batch engine the task endpoints drive
	Resolver handlers.VariantLookup // Product link resolver for /variants

	// Defaults fill in store parameters a submission leaves out
	Defaults handlers.SubmitDefaults

	// MaxUploadBytes bounds the multipart body of a submission
	MaxUploadBytes int64
}

// DefaultConfig creates a new Config instance with sensible default values
// for local development. Engine and Resolver must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:       "127.0.0.1",
		BindPort:       config.DefaultAPIPort,
		MaxUploadBytes: 32 << 20,
	}
}

// Validate performs validation of all configuration parameters to ensure the
// API server can start successfully.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.Engine == nil {
		return fmt.Errorf("engine cannot be nil")
	}
	if c.Resolver == nil {
		return fmt.Errorf("variant resolver cannot be nil")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	return nil
}
