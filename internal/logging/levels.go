package logging

import "fmt"

// ValidateLogLevel checks a level against the set accepted by daemon flags,
// config files and CLI flags. Levels must be uppercase.
func ValidateLogLevel(level string) error {
	switch level {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return nil
	}
	return fmt.Errorf("invalid log level: %s", level)
}
