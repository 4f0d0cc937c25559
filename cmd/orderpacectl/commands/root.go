// Package commands provides the command tree of orderpacectl.
//
// COMMAND STRUCTURE:
//   - submit: upload a CSV batch
//   - ls, status: inspect tasks (both support --watch)
//   - cancel: stop a running task
//   - download: fetch the failure CSV of a finished task
//   - variant: resolve a product link to a variant id
//   - info: daemon health and task counts
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "orderpacectl",
	Short: "CLI for the orderpace paced order submission daemon",
	Long: `orderpace CLI (orderpacectl) submits CSV order batches to orderpaced and
follows them until every record has an outcome.

Records that did not become orders can be downloaded as a CSV, fixed, and
submitted again as a new batch.`,
	SilenceUsage: true,
	Example: `  # Submit a batch spread until 6pm today
  orderpacectl submit orders.csv --variant=4242 --end-time=2026-10-20T18:00

  # Follow it live
  orderpacectl status 3f2b8c1e9a47 --watch

  # Fetch the records that failed
  orderpacectl download 3f2b8c1e9a47 -f failed.csv

  # Talk to a remote daemon, JSON output
  orderpacectl --api=192.168.1.100:8009 -o json ls`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(submitCmd)
	RootCmd.AddCommand(lsCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(cancelCmd)
	RootCmd.AddCommand(downloadCmd)
	RootCmd.AddCommand(variantCmd)
	RootCmd.AddCommand(infoCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"orderpaced API address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", 8,
		"Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output (full failure reasons)")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
