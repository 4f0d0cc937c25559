// Package logging provides ID formatting utilities for consistent ID display
// across all logging contexts.
//
// ID FORMATTING STRATEGY:
//   - Debug logs: Full task IDs for complete traceability
//   - Info/Warn/Error/Success logs: Truncated 12-character IDs for readability
//
// Task IDs are UUIDs; the short form is enough to tell concurrent batches
// apart in the daemon output while DEBUG keeps the value greppable.
package logging

import (
	"github.com/charmbracelet/log"
	"github.com/concave-dev/orderpace/internal/utils"
)

// FormatID formats an ID for logging based on the current log level context.
// Returns the full ID when debug logging is enabled and a truncated ID otherwise.
func FormatID(id string) string {
	if stderrLogger.GetLevel() <= log.DebugLevel {
		return id
	}
	return utils.TruncateIDSafe(id)
}

// FormatTaskID formats a task ID for logging with context-aware truncation.
//
// Usage: logging.Info("Task %s completed", logging.FormatTaskID(taskID))
func FormatTaskID(taskID string) string {
	return FormatID(taskID)
}

