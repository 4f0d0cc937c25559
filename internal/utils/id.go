// Package utils provides common utility functions for orderpace.
//
// This file implements unified ID generation used for batch tasks. Task IDs
// are random (v4) UUIDs so that they can double as artifact file names and be
// validated before any filesystem access.
package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortIDLength is the number of characters shown for truncated IDs in
// logs and CLI tables.
const ShortIDLength = 12

// GenerateID creates a new random task identifier.
//
// Returns format: "3f2b8c1e-9a47-4d1b-8f0e-5c6d7e8f9a0b"
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate task id: %w", err)
	}
	return id.String(), nil
}

// IsValidID reports whether s is a canonical task identifier.
func IsValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// TruncateIDSafe returns a short, hyphen-free prefix of an ID for display.
// IDs shorter than ShortIDLength are returned unchanged.
func TruncateIDSafe(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) <= ShortIDLength {
		return compact
	}
	return compact[:ShortIDLength]
}
