// Package commands provides the CLI command structure for the orderpace
// daemon.
//
// The daemon has a single root command. PreRunE resolves the layered
// configuration (flags, environment, config file), redirects logging when
// --log-file is set and validates everything before any component starts.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/orderpace/cmd/orderpaced/config"
	"github.com/concave-dev/orderpace/cmd/orderpaced/daemon"
	"github.com/concave-dev/orderpace/cmd/orderpaced/utils"
	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/version"
	"github.com/spf13/cobra"
)

// Global variable to track log file handle for cleanup
var logFileHandle *os.File

// CleanupLogFile closes the log file handle if it exists
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Not through logging: the handle being closed is the log output
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// Root command for the orderpace daemon
var RootCmd = &cobra.Command{
	Use:   "orderpaced",
	Short: "Paced order submission daemon for Shopify stores",
	Long: `orderpace daemon (orderpaced) accepts CSV batches of orders and replays them
against a Shopify store, spreading the submissions evenly until a deadline.

Every record gets an outcome. Records that did not become orders are written
to a failure CSV that can be fixed and uploaded again.`,
	Version:      version.DaemonVersion,
	SilenceUsage: true,
	Example: `  # Start with defaults (API on 0.0.0.0:8009, artifacts in ./uploads)
  orderpaced

  # Default store credentials from the environment
  ORDERPACE_STORE_URL=demo.myshopify.com ORDERPACE_ACCESS_TOKEN=shpat_... orderpaced

  # Two batches at once, three records in flight per batch
  orderpaced --batch-workers=2 --concurrency=3 --data-dir=/var/lib/orderpace`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.DisplayLogo(version.DaemonVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags(), configFile)
		if err != nil {
			return err
		}

		if cfg.LogFile != "" {
			logDir := filepath.Dir(cfg.LogFile)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
			}

			logFileHandle, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
			}

			logging.SetOutput(logFileHandle)
		}

		// DEBUG=true keeps working as a quick override
		if os.Getenv("DEBUG") == "true" {
			cfg.LogLevel = "DEBUG"
		}
		logging.SetLevel(cfg.LogLevel)

		if err := config.ValidateConfig(cfg); err != nil {
			CleanupLogFile()
			return err
		}

		config.Global = *cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run(cmd.Context(), &config.Global)
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
