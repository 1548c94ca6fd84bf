package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/linkage"
)

// Mock provides a mock implementation of Interface for testing.
// If a function field is nil, the method returns a default value.
type Mock struct {
	ClientFunc            func() (linkage.Client, error)
	ClientWithOptionsFunc func(...linkage.Option) (linkage.Client, error)
	LoggerFunc            func() *zerolog.Logger
	Format                string
	VersionValue          string
}

// Client returns a client from the mock function or a default client.
func (m *Mock) Client() (linkage.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return linkage.New(linkage.WithLogger(m.Logger()))
}

// ClientWithOptions returns a client from the mock function or a new
// client with the given options.
func (m *Mock) ClientWithOptions(opts ...linkage.Option) (linkage.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return linkage.New(append([]linkage.Option{linkage.WithLogger(m.Logger())}, opts...)...)
}

// Logger returns a logger from the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the configured format, defaulting to table.
func (m *Mock) OutputFormat() string {
	if m.Format == "" {
		return "table"
	}
	return m.Format
}

// Version returns the configured version or "test".
func (m *Mock) Version() string {
	if m.VersionValue == "" {
		return "test"
	}
	return m.VersionValue
}

// Commit returns a fixed commit.
func (m *Mock) Commit() string { return "none" }

// Date returns a fixed build date.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a fixed builder.
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
