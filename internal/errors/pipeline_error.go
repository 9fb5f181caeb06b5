// Package errors provides standardized error types for pipeline operations.
// This package defines PipelineError for consistent error handling across
// all stages, with operation context and error wrapping support.
package errors

import (
	"fmt"
)

// Kind classifies a PipelineError into the failure taxonomy used across
// the pipeline. Schema and data-quality violations abort the run;
// imputation failures are surfaced per-row before the policy decision.
type Kind int

const (
	// KindSchema indicates a missing required column or an unparseable row.
	KindSchema Kind = iota
	// KindDataQuality indicates a value violating a declared domain constraint.
	KindDataQuality
	// KindImputation indicates a row whose neighborhood cannot support estimation.
	KindImputation
	// KindInternal indicates an unexpected internal failure.
	KindInternal
)

// String returns the taxonomy name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SchemaError"
	case KindDataQuality:
		return "DataQualityError"
	case KindImputation:
		return "ImputationFailure"
	default:
		return "InternalError"
	}
}

// PipelineError represents standardized errors across all pipeline stages
type PipelineError struct {
	Kind    Kind   // Error classification
	Op      string // Operation name (e.g., "CleanDoctors", "Merge", "Impute")
	Table   string // Source table name if applicable
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("%s: %s failed on %s.%s: %s", e.Kind, e.Op, e.Table, e.Column, e.Message)
	case e.Column != "":
		return fmt.Sprintf("%s: %s failed on column '%s': %s", e.Kind, e.Op, e.Column, e.Message)
	case e.Table != "":
		return fmt.Sprintf("%s: %s failed on table '%s': %s", e.Kind, e.Op, e.Table, e.Message)
	default:
		return fmt.Sprintf("%s: %s failed: %s", e.Kind, e.Op, e.Message)
	}
}

// Unwrap returns the underlying cause for error wrapping support
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *PipelineError) Is(target error) bool {
	if pe, ok := target.(*PipelineError); ok {
		return e.Kind == pe.Kind && e.Op == pe.Op && e.Table == pe.Table &&
			e.Column == pe.Column && e.Message == pe.Message
	}
	return false
}

// Common error constructors for consistent error creation

// NewSchemaError creates an error for a missing or unparseable input column
func NewSchemaError(op, table, column, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindSchema,
		Op:      op,
		Table:   table,
		Column:  column,
		Message: message,
	}
}

// NewMissingColumnError creates an error for a required column absent from a table header
func NewMissingColumnError(op, table, column string) *PipelineError {
	return &PipelineError{
		Kind:    KindSchema,
		Op:      op,
		Table:   table,
		Column:  column,
		Message: "required column missing from header",
	}
}

// NewDataQualityError creates an error for a value violating a domain constraint
func NewDataQualityError(op, table, column, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindDataQuality,
		Op:      op,
		Table:   table,
		Column:  column,
		Message: message,
	}
}

// NewImputationError creates an error for a row whose neighborhood cannot support estimation
func NewImputationError(op, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindImputation,
		Op:      op,
		Message: message,
	}
}

// NewInternalError creates an error for internal stage failures
func NewInternalError(op string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// IsKind reports whether err is a PipelineError of the given kind.
func IsKind(err error, kind Kind) bool {
	pe, ok := err.(*PipelineError)
	return ok && pe.Kind == kind
}
