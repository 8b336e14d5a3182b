// Package errors provides a lightweight structured error type (MetricsError)
// for category-based classification in the registry, provider lifecycle and
// HTTP adapters.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a MetricsError for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Metric recording errors
	CategoryObservation ErrorCategory = "observation"
	CategorySampling    ErrorCategory = "sampling"
	CategoryRotation    ErrorCategory = "rotation"

	// Runtime and infrastructure errors
	CategoryLifecycle ErrorCategory = "lifecycle"
	CategoryShutdown  ErrorCategory = "shutdown"
	CategoryPublish   ErrorCategory = "publish"
	CategoryInternal  ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// MetricsError is a structured error with category, severity, and context
type MetricsError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for MetricsError
type ContextFields map[string]any

// Error implements the error interface
func (e *MetricsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *MetricsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *MetricsError) WithContext(key string, value any) *MetricsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new MetricsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *MetricsError {
	return &MetricsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new MetricsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *MetricsError {
	return &MetricsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if me, ok := err.(*MetricsError); ok {
		return me.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a MetricsError
func GetCategory(err error) ErrorCategory {
	if me, ok := err.(*MetricsError); ok {
		return me.Category
	}
	return CategoryInternal
}
