package plottypes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("invalid plot arguments")

// ErrEngineExited indicates the engine closed its output before the
// end-of-command marker was seen.
var ErrEngineExited = errors.New("gnuplot exited")

// ErrTimeout indicates the engine did not answer within the timeout.
var ErrTimeout = errors.New("gnuplot response timed out")

// ErrClosed indicates the session was closed by its owner.
var ErrClosed = errors.New("session closed")

// ValidationError reports malformed arguments. It is raised before any
// bytes reach the engine.
type ValidationError struct {
	Field  string // "shape", "data", "range", "style"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ProtocolError carries the engine's diagnostic for a failed command.
// Message is bounded; Lines holds the full response.
type ProtocolError struct {
	Command string
	Message string
	Lines   []string
}

func (e *ProtocolError) Error() string {
	cmd := e.Command
	if i := strings.IndexByte(cmd, '\n'); i >= 0 {
		cmd = cmd[:i]
	}
	return fmt.Sprintf("gnuplot error in %q:\n%s", cmd, e.Message)
}

// IOError reports a pipe or subprocess failure. Once returned by a
// session, the session stays failed.
type IOError struct {
	Op  string // "start", "write", "read", "wait"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("gnuplot %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError.
func NewIOError(op string, err error) *IOError {
	return &IOError{Op: op, Err: err}
}
