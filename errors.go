package albumetl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/albumetl/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrNotFound indicates that the input file does not exist
	ErrNotFound = errors.New("albumetl: input not found")

	// ErrFormat indicates malformed input that cannot be read as a table
	ErrFormat = errors.New("albumetl: invalid input format")

	// ErrStorage indicates that the SQLite store could not be opened or written
	ErrStorage = errors.New("albumetl: storage failure")

	// ErrRender indicates that a chart or report artifact could not be produced
	ErrRender = errors.New("albumetl: render failure")

	// ErrExport indicates that a table snapshot could not be written
	ErrExport = errors.New("albumetl: export failure")

	// ErrInvalidPipeline indicates a pipeline configured with invalid settings
	ErrInvalidPipeline = errors.New("albumetl: invalid pipeline configuration")

	// ErrColumnNotFound indicates that a required column is absent from a table
	ErrColumnNotFound = model.ErrColumnNotFound
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

func (ec *ErrorContext) prefix() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}
	return strings.Join(parts, ", ")
}

// Error creates a formatted error with context.
// The result matches kind with errors.Is, and the cause as well when it is not nil.
// A canceled or expired context is reported as itself instead of as kind.
func (ec *ErrorContext) Error(kind, cause error) error {
	msg := ec.prefix()
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, cause)
	}
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", kind, msg, cause)
	}
	return fmt.Errorf("%w: %s", kind, msg)
}
