// Package commands contains Cobra CLI command definitions for orderpaced.
package commands

import (
	"github.com/concave-dev/orderpace/cmd/orderpaced/config"
	configDefaults "github.com/concave-dev/orderpace/internal/config"
	"github.com/spf13/cobra"
)

// configFile is the path given with --config
var configFile string

// SetupFlags configures all command line flags for the daemon. Every flag
// except --config can also come from ORDERPACE_* variables or orderpace.yaml.
func SetupFlags(cmd *cobra.Command) {
	// API flags
	cmd.Flags().String("api", config.DefaultAPI,
		"Address and port for HTTP API server (e.g., "+config.DefaultAPI+")")
	cmd.Flags().String("data-dir", config.DefaultDataDir,
		"Directory where failure CSV artifacts are written")

	// Engine flags
	cmd.Flags().Int("concurrency", configDefaults.DefaultConcurrency,
		"Records of one batch submitted at the same time")
	cmd.Flags().Int("batch-workers", configDefaults.DefaultBatchWorkers,
		"Batches processed at the same time")
	cmd.Flags().Int("queue-size", configDefaults.DefaultQueueSize,
		"Accepted batches that may wait for a batch worker before submissions are refused")

	// Store defaults, used when a submission leaves them out
	cmd.Flags().String("store", "",
		"Default store address (e.g., demo.myshopify.com)")
	cmd.Flags().String("token", "",
		"Default store access token (prefer ORDERPACE_ACCESS_TOKEN)")
	cmd.Flags().String("variant", "",
		"Default product variant id")

	// Operational flags
	cmd.Flags().StringVar(&configFile, "config", "",
		"Config file (defaults to ./orderpace.yaml when present)")
	cmd.Flags().String("log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().String("log-file", "",
		"Write logs to this file instead of stdout/stderr")
}
