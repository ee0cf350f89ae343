package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrMissingParameter      = fmt.Errorf("missing parameter: %w", ErrInvalidInput)
	ErrInvalidArgument       = fmt.Errorf("invalid argument: %w", ErrInvalidInput)
	ErrMalformedInput        = fmt.Errorf("malformed input: %w", ErrInvalidInput)
	ErrUnsupportedFrame      = fmt.Errorf("frame: %w", ErrUnsupported)
	ErrUnsupportedConversion = fmt.Errorf("conversion: %w", ErrUnsupported)
	ErrUnsupportedProjection = fmt.Errorf("projection: %w", ErrUnsupported)
	ErrDatasetNotFound       = fmt.Errorf("dataset: %w", ErrNotFound)
	ErrNotReady              = fmt.Errorf("service not ready: %w", ErrUnavailable)
	ErrStorageUnavailable    = fmt.Errorf("storage: %w", ErrUnavailable)
)

// ParameterError reports a missing or invalid construction parameter.
type ParameterError struct {
	Field   string // Parameter name
	Message string // Human-readable message
	Err     error  // ErrMissingParameter or ErrInvalidArgument
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("parameter %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parameter %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParameterError) Unwrap() error {
	return e.Err
}

// FrameError reports an unknown frame identifier.
type FrameError struct {
	Frame FrameID // Offending identifier
}

// Error implements the error interface.
func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %q is not implemented", string(e.Frame))
}

// Unwrap returns the underlying error type.
func (e *FrameError) Unwrap() error {
	return ErrUnsupportedFrame
}

// ConversionError reports a frame pair the conversion table does not handle.
type ConversionError struct {
	From FrameID
	To   FrameID
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion %s to %s is not implemented", e.From, e.To)
}

// Unwrap returns the underlying error type.
func (e *ConversionError) Unwrap() error {
	return ErrUnsupportedConversion
}

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// StorageError represents an error during storage operations.
type StorageError struct {
	Operation string // Operation that failed (list, read, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// DatasetError represents an error while loading or querying a dataset.
type DatasetError struct {
	DatasetID string // Dataset identifier
	Feature   string // Feature identifier (optional)
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *DatasetError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("dataset %s, feature %s: %v", e.DatasetID, e.Feature, e.Err)
	}
	return fmt.Sprintf("dataset %s: %v", e.DatasetID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DatasetError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
