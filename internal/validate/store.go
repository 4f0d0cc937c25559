package validate

import (
	"fmt"
	"net/url"
	"strings"
)

// StoreAddress validates a store endpoint. Accepts a bare host such as
// "example.myshopify.com" or an absolute http(s) URL without a path.
func StoreAddress(store string) error {
	if store == "" {
		return fmt.Errorf("store address cannot be empty")
	}

	host := store
	if strings.Contains(store, "://") {
		u, err := url.Parse(store)
		if err != nil {
			return fmt.Errorf("invalid store address '%s': %w", store, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("store address '%s' must use http or https", store)
		}
		if u.Path != "" && u.Path != "/" {
			return fmt.Errorf("store address '%s' must not contain a path", store)
		}
		host = u.Host
	}

	if err := ValidateField(host, "required,hostname_port|hostname_rfc1123|ip"); err != nil {
		return fmt.Errorf("invalid store host '%s'", host)
	}
	return nil
}

// VariantID validates a product variant identifier. The remote platform uses
// positive decimal integers.
func VariantID(id string) error {
	if err := ValidateField(id, "required,numeric,excludesall=+-."); err != nil {
		return fmt.Errorf("variant id '%s' must be a positive integer", id)
	}
	return nil
}
