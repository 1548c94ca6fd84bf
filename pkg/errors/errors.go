// Package errors provides custom error types for the linkage system.
// These errors enable programmatic error checking across the record
// loading, matching, dispatch, and persistence layers.
package errors

import (
	"errors"
	"fmt"
)

// Aliases for the standard library functions, so callers need only one
// errors import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Common sentinel errors for the linkage system
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRecord indicates a malformed record in an input sequence
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicateRecord indicates two input records share a provider and id
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrDecision indicates a decider failed while evaluating a candidate pair
	ErrDecision = errors.New("decision failed")

	// ErrHandler indicates a bucket handler failed
	ErrHandler = errors.New("handler failed")

	// ErrConfig indicates unreadable or malformed configuration
	ErrConfig = errors.New("invalid configuration")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Component != "" {
		msg += " in " + e.Component
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// RecordError represents a malformed record or a failure while reading
// an input sequence.
type RecordError struct {
	Provider string
	ID       string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	switch {
	case e.ID != "" && e.Err != nil:
		return fmt.Sprintf("record %s/%s: %s: %v", e.Provider, e.ID, e.Message, e.Err)
	case e.ID != "":
		return fmt.Sprintf("record %s/%s: %s", e.Provider, e.ID, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("records from %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("records from %s: %s", e.Provider, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// NewRecordError creates a new RecordError
func NewRecordError(provider, id, message string, err error) *RecordError {
	return &RecordError{
		Provider: provider,
		ID:       id,
		Message:  message,
		Err:      err,
	}
}

// DecisionError wraps an error returned by a decider for a candidate pair
type DecisionError struct {
	Pair string
	Err  error
}

// Error implements the error interface
func (e *DecisionError) Error() string {
	return fmt.Sprintf("decider failed for pair %s: %v", e.Pair, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *DecisionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DecisionError) Is(target error) bool {
	return target == ErrDecision
}

// HandlerError wraps an error returned by a bucket handler
type HandlerError struct {
	Cardinality string
	Bucket      int
	Err         error
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler failed for bucket %d: %v", e.Cardinality, e.Bucket, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandler
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "yaml", "toml", etc.
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "write", "open", "close"
	Resource  string // "sink", "source", "bucket", "job"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error was caused by configuration
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsRecordError checks if an error was caused by malformed input records
func IsRecordError(err error) bool {
	return errors.Is(err, ErrInvalidRecord) || errors.Is(err, ErrDuplicateRecord)
}

// IsDecisionError checks if an error was raised by a decider
func IsDecisionError(err error) bool {
	return errors.Is(err, ErrDecision)
}

// IsHandlerError checks if an error was raised by a bucket handler
func IsHandlerError(err error) bool {
	return errors.Is(err, ErrHandler)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapDecision wraps an error returned by a decider
func WrapDecision(pair string, err error) error {
	if err == nil {
		return nil
	}
	return &DecisionError{Pair: pair, Err: err}
}

// WrapHandler wraps an error returned by a bucket handler
func WrapHandler(cardinality string, bucket int, err error) error {
	if err == nil {
		return nil
	}
	return &HandlerError{Cardinality: cardinality, Bucket: bucket, Err: err}
}
