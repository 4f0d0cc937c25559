// Package config provides common default configuration values shared across
// orderpace components (API server, engine, remote client, CLI). This
// centralizes tuning knobs so the daemon flags, the viper loader and the tests
// agree on the same values.
package config

import "time"

const (
	// DefaultBindAddr is the default bind address for the HTTP API.
	// Using 0.0.0.0 allows binding to all available network interfaces
	DefaultBindAddr = "0.0.0.0"

	// DefaultAPIPort is the default port for the HTTP API server
	DefaultAPIPort = 8009

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultDataDir is where failure artifacts are written
	DefaultDataDir = "./uploads"

	// DefaultConcurrency is the number of records of one batch that may be
	// in flight at once. Submission is pacing-dominated, so one is enough.
	DefaultConcurrency = 1

	// DefaultBatchWorkers is the number of batches that may run at once
	DefaultBatchWorkers = 1

	// DefaultQueueSize is the number of accepted batches that may wait for a
	// batch worker before new submissions are rejected
	DefaultQueueSize = 64

	// DefaultRequestTimeout bounds every outbound call to the store
	DefaultRequestTimeout = 10 * time.Second

	// EnvPrefix is the prefix for environment overrides (ORDERPACE_STORE_URL...)
	EnvPrefix = "ORDERPACE"
)
