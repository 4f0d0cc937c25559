package config

import (
	"fmt"
	"strings"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if err := validate.ValidateField(Global.Timeout, "min=1,max=600"); err != nil {
		return fmt.Errorf("timeout must be between 1 and 600 seconds")
	}

	Global.LogLevel = strings.ToUpper(Global.LogLevel)
	return logging.ValidateLogLevel(Global.LogLevel)
}

// ValidateAPIAddress validates the --api flag
func ValidateAPIAddress() error {
	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., %s)", DefaultAPIAddr)
	}

	// 0.0.0.0 is a bind address, not a destination
	if netAddr.Host == "0.0.0.0" {
		logging.Error("Unroutable API address '0.0.0.0:%d' - cannot connect to 0.0.0.0", netAddr.Port)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific IP address")
	}

	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		logging.Error("Invalid API port %d: %v", netAddr.Port, err)
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateStatusFilter validates the --status flag of ls
func ValidateStatusFilter() error {
	if Task.StatusFilter == "" {
		return nil
	}
	switch strings.ToLower(Task.StatusFilter) {
	case "running", "completed", "cancelled":
		return nil
	}
	return fmt.Errorf("invalid status filter '%s' - valid: Running, Completed, Cancelled", Task.StatusFilter)
}
