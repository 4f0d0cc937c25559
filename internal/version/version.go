// Package version provides centralized version information for the orderpace
// daemon and CLI. Both binaries are versioned independently.
// All versions follow semantic versioning (semver) conventions.
package version

// DaemonVersion holds the current orderpaced version.
const DaemonVersion = "0.1.0-dev"

// CtlVersion holds the current orderpacectl version.
const CtlVersion = "0.1.0-dev"
