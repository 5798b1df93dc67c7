package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures settings or catalog validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a failed installer step for a component.
type ExecutionError struct {
	ComponentID string
	Err         error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(componentID string, err error) error {
	return &ExecutionError{ComponentID: componentID, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.ComponentID != "" {
		return fmt.Sprintf("execution error on component %s: %v", e.ComponentID, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// QueryError reports a host query that produced no usable evidence: the tool
// was missing, it timed out, or it exited non-zero.
type QueryError struct {
	Argv     []string
	ExitCode int
	TimedOut bool
	Err      error
}

// NewQueryError constructs a QueryError.
func NewQueryError(argv []string, exitCode int, timedOut bool, err error) error {
	return &QueryError{Argv: append([]string(nil), argv...), ExitCode: exitCode, TimedOut: timedOut, Err: err}
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	cmd := strings.Join(e.Argv, " ")
	switch {
	case e.TimedOut:
		return fmt.Sprintf("query error: %s: timed out", cmd)
	case e.ExitCode > 0:
		return fmt.Sprintf("query error: %s: exit status %d", cmd, e.ExitCode)
	default:
		return fmt.Sprintf("query error: %s: %v", cmd, e.Err)
	}
}

// Unwrap exposes the underlying error.
func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
