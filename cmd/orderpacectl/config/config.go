// Package config provides configuration management for the orderpacectl CLI.
package config

import (
	"fmt"

	configDefaults "github.com/concave-dev/orderpace/internal/config"
	"github.com/concave-dev/orderpace/internal/version"
)

// DefaultAPIAddr is the routable address of a local daemon
var DefaultAPIAddr = fmt.Sprintf("127.0.0.1:%d", configDefaults.DefaultAPIPort)

// Version returns the current orderpacectl version from the centralized version package
var Version = version.CtlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of the orderpaced API server
	LogLevel string // Log level for CLI operations
	Timeout  int    // Request timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Submit holds the submit command configuration
var Submit struct {
	VariantID   string // Variant id, daemon default when empty
	Store       string // Store address, daemon default when empty
	AccessToken string // Store access token, daemon default when empty
	EndTime     string // Deadline (RFC 3339 or YYYY-MM-DDTHH:MM)
	Watch       bool   // Follow the task until it finishes
}

// Task holds the configuration of ls and status
var Task struct {
	Watch        bool   // Enable watch mode for live updates
	StatusFilter string // Filter tasks by status (Running, Completed, Cancelled)
}

// Download holds the download command configuration
var Download struct {
	OutFile string // Destination path, "-" for stdout
}
