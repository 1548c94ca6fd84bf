// Package constants provides shared constants used throughout the linkage codebase.
// This includes defaults for matching runs, file permissions, and limits that
// should be consistent across the library and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// ShutdownTimeout bounds graceful shutdown of the CLI after a failed run
	ShutdownTimeout = 5 * time.Second

	// SinkConnectTimeout bounds connectivity checks against external sinks
	SinkConnectTimeout = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Matching defaults
const (
	// DefaultParallelism runs every engine phase on the calling goroutine
	DefaultParallelism = 1

	// MaxParallelism caps the worker pool used for loading and dispatch
	MaxParallelism = 64

	// DiscriminatingBucketSize is the only attribute bucket size that yields
	// candidate evidence: exactly one record on each side.
	DiscriminatingBucketSize = 2

	// DefaultValueSeparator splits multi-valued cells in delimited sources
	DefaultValueSeparator = "|"
)

// Output formats understood by the CLI
const (
	FormatTable    = "table"
	FormatWide     = "wide"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)
