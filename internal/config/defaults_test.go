package config

import (
	"net"
	"strings"
	"testing"
)

// TestDefaultBindAddrIsValidIP validates that the default bind address is a valid IP
func TestDefaultBindAddrIsValidIP(t *testing.T) {
	ip := net.ParseIP(DefaultBindAddr)
	if ip == nil {
		t.Fatalf("DefaultBindAddr %q is not a valid IP address", DefaultBindAddr)
	}
	if ip.To4() == nil {
		t.Errorf("DefaultBindAddr %q is not a valid IPv4 address", DefaultBindAddr)
	}
}

// TestDefaultLogLevelFormat validates log level format conventions
func TestDefaultLogLevelFormat(t *testing.T) {
	if DefaultLogLevel != strings.ToUpper(DefaultLogLevel) {
		t.Errorf("DefaultLogLevel %q should be uppercase", DefaultLogLevel)
	}
	if DefaultLogLevel != "INFO" {
		t.Errorf("DefaultLogLevel = %q, want INFO", DefaultLogLevel)
	}
}

// TestEngineDefaults validates the engine sizing defaults
func TestEngineDefaults(t *testing.T) {
	if DefaultConcurrency != 1 {
		t.Errorf("DefaultConcurrency = %d, want 1 (sequential, pacing-dominated)", DefaultConcurrency)
	}
	if DefaultBatchWorkers < 1 {
		t.Errorf("DefaultBatchWorkers = %d, want >= 1", DefaultBatchWorkers)
	}
	if DefaultQueueSize < DefaultBatchWorkers {
		t.Errorf("DefaultQueueSize %d smaller than batch workers %d", DefaultQueueSize, DefaultBatchWorkers)
	}
	if DefaultRequestTimeout.Seconds() != 10 {
		t.Errorf("DefaultRequestTimeout = %v, want 10s", DefaultRequestTimeout)
	}
}
