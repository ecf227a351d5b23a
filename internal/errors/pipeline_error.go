// Package errors provides standardized error types for preprocessing
// operations. This package defines PipelineError for consistent error
// handling across all public APIs, with stage context and error wrapping
// support.
package errors

import (
	"fmt"
)

// PipelineError represents standardized errors across all preprocessing operations
type PipelineError struct {
	Stage   string // Stage name if the error originated inside a stage
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	message := e.Message
	if e.Cause != nil {
		message = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	switch {
	case e.Stage != "" && e.Column != "":
		return fmt.Sprintf("stage %s failed on column '%s': %s", e.Stage, e.Column, message)
	case e.Stage != "":
		return fmt.Sprintf("stage %s failed: %s", e.Stage, message)
	default:
		return fmt.Sprintf("preprocessing failed: %s", message)
	}
}

// Unwrap returns the underlying cause for error wrapping support
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *PipelineError) Is(target error) bool {
	if pe, ok := target.(*PipelineError); ok {
		return e.Stage == pe.Stage && e.Column == pe.Column && e.Message == pe.Message
	}
	return false
}

// NewStageError creates an error carrying the failing stage's name
func NewStageError(stage, message string) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: message,
	}
}

// NewColumnError creates an error for a failure scoped to a single column
func NewColumnError(stage, column, message string) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Column:  column,
		Message: message,
	}
}

// NewInternalError wraps an unexpected failure inside a stage
func NewInternalError(stage string, cause error) *PipelineError {
	return &PipelineError{
		Stage:   stage,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Predefined error variables for common cases
var (
	// ErrEmptyDataset indicates operations on datasets with no rows or columns
	ErrEmptyDataset = &PipelineError{
		Message: "operation not supported on empty dataset",
	}

	// ErrMismatchedLength indicates column length mismatches
	ErrMismatchedLength = &PipelineError{
		Message: "columns must have the same length",
	}

	// ErrDuplicateColumn indicates two columns sharing one name
	ErrDuplicateColumn = &PipelineError{
		Message: "duplicate column name",
	}
)
