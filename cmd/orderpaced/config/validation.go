package config

import (
	"fmt"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/concave-dev/orderpace/internal/validate"
)

// ValidateConfig validates c and fills in the derived API host and port.
//
// Sizing limits and the optional store defaults are checked through struct
// tags. The API port must be explicit since orderpacectl needs a predictable
// address.
func ValidateConfig(c *Config) error {
	if err := validate.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	netAddr, err := validate.ParseBindAddress(c.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", c.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	if err := validate.ValidatePortRange(netAddr.Port); err != nil {
		return fmt.Errorf("API address requires specific port (not 0): %w", err)
	}
	c.APIHost = netAddr.Host
	c.APIPort = netAddr.Port

	return nil
}
