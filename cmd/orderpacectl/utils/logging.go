// Package utils provides utility functions for the orderpacectl CLI.
package utils

import (
	"os"

	"github.com/concave-dev/orderpace/cmd/orderpacectl/config"
	"github.com/concave-dev/orderpace/internal/logging"
)

// SetupLogging configures CLI logging. DEBUG=true shows everything, otherwise
// only errors are printed so table and JSON output stay clean.
func SetupLogging() {
	if os.Getenv("DEBUG") == "true" {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
		return
	}

	logging.SetLevel(config.Global.LogLevel)
	if config.Global.LogLevel == "ERROR" {
		logging.SuppressOutput()
	}
}
