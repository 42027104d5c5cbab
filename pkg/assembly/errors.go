package assembly

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrMissingColumn        = errors.New("missing required column")
	ErrNullValue            = errors.New("null value")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUnresolvedDependency = errors.New("unresolved dependency")
)

// AssemblyError provides structured error information for assembly
// operations.
type AssemblyError struct {
	Op      string // Operation that failed (e.g., "assemble", "fetch")
	Table   string // Table name ("edges" or "nodes")
	Column  string // Column name (if applicable)
	Row     int    // 1-based data row (0 when not applicable)
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *AssemblyError) Error() string {
	loc := e.Table
	if e.Column != "" {
		loc = fmt.Sprintf("%s[%s]", loc, e.Column)
	}
	if e.Row > 0 {
		loc = fmt.Sprintf("%s row %d", loc, e.Row)
	}
	if loc == "" {
		if e.Context != "" {
			return fmt.Sprintf("%s (%s): %v", e.Op, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, loc, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, loc, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AssemblyError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *AssemblyError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building AssemblyErrors.
type ErrorBuilder struct {
	err AssemblyError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: AssemblyError{Op: op}}
}

// Table sets the table the error refers to.
func (b *ErrorBuilder) Table(name string) *ErrorBuilder {
	b.err.Table = name
	return b
}

// Column sets the column the error refers to.
func (b *ErrorBuilder) Column(name string) *ErrorBuilder {
	b.err.Column = name
	return b
}

// Row sets the 1-based data row the error refers to.
func (b *ErrorBuilder) Row(row int) *ErrorBuilder {
	b.err.Row = row
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed AssemblyError.
func (b *ErrorBuilder) Build() *AssemblyError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// Convenience functions for common error patterns

// MissingColumnError reports a required column absent from a table.
func MissingColumnError(op, table, column string) error {
	return NewError(op).Table(table).Column(column).Cause(ErrMissingColumn).Err()
}

// NullValueError reports a null cell where a value is required.
func NullValueError(op, table, column string, row int) error {
	return NewError(op).Table(table).Column(column).Row(row).Cause(ErrNullValue).Err()
}

// InvalidArgumentError reports a caller mistake with context.
func InvalidArgumentError(op, context string) error {
	return NewError(op).Context(context).Cause(ErrInvalidArgument).Err()
}

// IsMissingColumn returns true if the error is a missing column error.
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsNullValue returns true if the error is a null value error.
func IsNullValue(err error) bool {
	return errors.Is(err, ErrNullValue)
}

// IsInvalidArgument returns true if the error is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
