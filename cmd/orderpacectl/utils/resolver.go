package utils

import (
	"fmt"
	"strings"

	"github.com/concave-dev/orderpace/internal/logging"
	internalutils "github.com/concave-dev/orderpace/internal/utils"
)

// TaskLister lists task ids for resolution
type TaskLister interface {
	GetTaskIDsForResolver() ([]string, error)
}

// ResolveTaskIdentifier resolves a full or partial task id. Partial ids are
// matched against the hyphen-free form shown in tables, so "3f2b8c1e9a47"
// and "3f2b" both resolve when unique. A full UUID is returned unchanged
// without contacting the daemon.
func ResolveTaskIdentifier(lister TaskLister, identifier string) (string, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return "", fmt.Errorf("task id cannot be empty")
	}
	if internalutils.IsValidID(identifier) {
		return identifier, nil
	}

	prefix := strings.ReplaceAll(identifier, "-", "")
	if !IsHexString(prefix) {
		return "", fmt.Errorf("invalid task id '%s'", identifier)
	}

	ids, err := lister.GetTaskIDsForResolver()
	if err != nil {
		return "", fmt.Errorf("failed to list tasks for ID resolution: %w", err)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(strings.ReplaceAll(id, "-", ""), prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches '%s'", identifier)
	case 1:
		logging.Info("Resolved partial ID '%s' to full ID '%s'", identifier, matches[0])
		return matches[0], nil
	default:
		logging.Error("Partial ID '%s' is not unique, matches multiple tasks:", identifier)
		for _, id := range matches {
			logging.Error("  %s", id)
		}
		return "", fmt.Errorf("partial ID not unique")
	}
}

// IsHexString checks if a string contains only hexadecimal characters
func IsHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, char := range s {
		if !((char >= '0' && char <= '9') || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')) {
			return false
		}
	}
	return true
}
