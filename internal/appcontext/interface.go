// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/linkage"
)

// Interface defines the application context that commands need. The App
// struct from cmd/linkage/app implements it; tests use Mock.
type Interface interface {
	// Client returns the default linkage client, creating it lazily.
	Client() (linkage.Client, error)

	// ClientWithOptions creates a new client with extra options, for
	// commands that register their own handlers or hooks.
	ClientWithOptions(...linkage.Option) (linkage.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, ...).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
