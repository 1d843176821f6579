package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Registry-related errors
	ErrInstrumentTypeMismatch = errors.New("instrument type mismatch")
	ErrUnknownInstrumentType  = errors.New("unknown instrument type")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// Reporting errors
	ErrReporterStopped = errors.New("reporter stopped")
)

// MetricError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type MetricError struct {
	Op     string // Operation that failed (e.g., "registry.Counter")
	Metric string // Name of the metric involved
	Err    error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *MetricError) Error() string {
	if e.Metric != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Metric, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *MetricError) Unwrap() error {
	return e.Err
}

// NewMetricError creates a new MetricError
func NewMetricError(op, metric string, err error) *MetricError {
	return &MetricError{
		Op:     op,
		Metric: metric,
		Err:    err,
	}
}

// IsTypeMismatch checks if an error is a metric type conflict.
// Type conflicts signal programmer errors and are never retried.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrInstrumentTypeMismatch)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
