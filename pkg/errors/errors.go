// Package errors provides custom error types for the feedsmith system.
// These errors enable programmatic error checking across the importers,
// stores, and query surface.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the feedsmith system.
var (
	// ErrNotFound indicates that a requested catalog entry was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFeedUnreadable indicates that a feed resource could not be read.
	ErrFeedUnreadable = errors.New("feed unreadable")

	// ErrReadOnly indicates an attempt to modify a read-only store.
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a resource is not found.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ParseError represents an error when parsing feed data.
type ParseError struct {
	Format  string // "delimited", "json", "yaml"
	Line    int    // 1-based row number within the feed, 0 when unknown
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Field != "" {
		return fmt.Sprintf("%s parse error at row %d, field %s: %s", e.Format, e.Line, e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s parse error at row %d: %s", e.Format, e.Line, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError.
func NewParseError(format string, line int, field, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Line:    line,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations on a feed or store.
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *IOError) Is(target error) bool {
	return target == ErrFeedUnreadable
}

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// StoreError represents a failure inside a catalog store implementation.
type StoreError struct {
	Backend   string // "memory", "files", "postgres"
	Operation string // "findAll", "findBySku", "save", "saveAll"
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store error during %s: %v", e.Backend, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, err error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Err: err}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsParseError checks if an error is a feed parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsFeedUnreadable checks if an error indicates an unreadable feed resource.
func IsFeedUnreadable(err error) bool {
	return errors.Is(err, ErrFeedUnreadable)
}
