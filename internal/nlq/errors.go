package nlq

import (
	"errors"
	"fmt"
)

// ErrEmptySQL reports a generation call that succeeded but produced no
// statement after fence stripping.
var ErrEmptySQL = errors.New("sql generation produced an empty statement")

// GenerationError wraps a model failure during SQL generation. Terminal.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("SQL Generation Error: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError wraps a database failure while running generated SQL.
// Terminal.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("SQL Execution Error: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// UnexpectedError wraps a panic recovered at the pipeline boundary so callers
// never see a raw crash.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
