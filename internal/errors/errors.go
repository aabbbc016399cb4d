// Package errors provides centralized error definitions and error handling utilities
// for ratch. It defines the error taxonomy of the refresh-and-view engine, error
// constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
//   - ArgumentError: bad command line or configuration. Fatal at startup.
//   - ExecutionError: the watched command failed to spawn, its output could not
//     be read, or it exited non-zero. Rendered as a single failure line; the
//     next scheduled run proceeds normally.
//   - PatternError: the search text does not compile. Surfaced as a transient
//     status message; the previous pattern stays active.
//
// # Usage
//
//	err := errors.NewArgumentError("interval", "abc", errors.ErrInvalidInterval)
//	if errors.IsFatal(err) { ... }
//
//	var execErr *errors.ExecutionError
//	if errors.As(err, &execErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// Standard library helpers, so callers need only this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity ranks how much an error disturbs a session.
type Severity int

const (
	// SeverityWarning is shown to the user and then forgotten, like a bad
	// search pattern.
	SeverityWarning Severity = iota
	// SeverityError replaces the buffer for one refresh; the schedule goes on.
	SeverityError
	// SeverityCritical stops ratch before the screen is taken over.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Startup sentinel errors
var (
	// ErrMissingCommand indicates that no command to watch was given.
	ErrMissingCommand = New("missing command")
	// ErrInvalidInterval indicates that the interval is not a positive number of seconds.
	ErrInvalidInterval = New("invalid interval")
	// ErrNotTerminal indicates that stdin or stdout is not attached to a terminal.
	ErrNotTerminal = New("not a terminal")
	// ErrUnknownBackend indicates that the requested terminal backend does not exist.
	ErrUnknownBackend = New("unknown backend")
)

// Runtime sentinel errors
var (
	// ErrBusy indicates that the executor is at its in-flight cap.
	ErrBusy = New("too many runs in flight")
	// ErrTimeout indicates that a run exceeded its timeout.
	ErrTimeout = New("run timed out")
	// ErrSuperseded indicates that a run was canceled because a newer run was admitted.
	ErrSuperseded = New("run superseded")
	// ErrClosed indicates that the executor has been closed.
	ErrClosed = New("executor closed")
	// ErrPanic indicates that a worker panicked while running the command.
	ErrPanic = New("worker panicked")
)

// RatchError is implemented by every error type in this package.
type RatchError interface {
	error
	Unwrap() error
	Severity() Severity
	// IsRetryable reports whether the next scheduled run may succeed.
	IsRetryable() bool
	// IsUserFacing reports whether the message can be shown as is.
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// ArgumentError reports an unusable command line argument or config value.
//
// Example:
//
//	err := errors.NewArgumentError("interval", "abc", errors.ErrInvalidInterval)
//	fmt.Println(err) // "invalid argument [interval=abc]: invalid interval"
type ArgumentError struct {
	baseError
	Name  string
	Value string
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(name, value string, cause error) *ArgumentError {
	return &ArgumentError{
		baseError: baseError{
			message:    "invalid argument",
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
		Name:  name,
		Value: value,
	}
}

// WithMessage replaces the default message.
func (e *ArgumentError) WithMessage(msg string) *ArgumentError {
	e.message = msg
	return e
}

// Error returns the formatted error message.
func (e *ArgumentError) Error() string {
	prefix := e.message
	if e.Name != "" {
		prefix = fmt.Sprintf("%s [%s=%s]", e.message, e.Name, e.Value)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// ExecutionError reports a failed run of the watched command.
//
// Example:
//
//	err := errors.NewExecutionError("command exited", exitErr).WithGeneration(7)
//	fmt.Println(err) // "run #7 [ls -l]: command exited: exit status 2"
type ExecutionError struct {
	baseError
	Generation uint64
	Command    string
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(message string, cause error) *ExecutionError {
	return &ExecutionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithGeneration records which run failed.
func (e *ExecutionError) WithGeneration(gen uint64) *ExecutionError {
	e.Generation = gen
	return e
}

// WithCommand records the command line that failed.
func (e *ExecutionError) WithCommand(argv []string) *ExecutionError {
	e.Command = strings.Join(argv, " ")
	return e
}

// Error returns the formatted error message.
func (e *ExecutionError) Error() string {
	var parts []string
	if e.Generation != 0 {
		parts = append(parts, fmt.Sprintf("run #%d", e.Generation))
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Command))
	}
	msg := e.message
	if len(parts) > 0 {
		msg = strings.Join(parts, " ") + ": " + e.message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Reason returns what went wrong without the run and command prefix. Process
// errors are reported as-is; anything else falls back to the whole cause.
func (e *ExecutionError) Reason() string {
	if e.cause == nil {
		return e.message
	}
	var exitErr *exec.ExitError
	if As(e.cause, &exitErr) {
		return exitErr.Error()
	}
	var execErr *exec.Error
	if As(e.cause, &execErr) {
		return execErr.Error()
	}
	var pathErr *fs.PathError
	if As(e.cause, &pathErr) {
		return pathErr.Error()
	}
	return e.cause.Error()
}

// PatternError reports search text that does not compile.
type PatternError struct {
	baseError
	Pattern string
}

// NewPatternError creates a new PatternError.
func NewPatternError(pattern string, cause error) *PatternError {
	return &PatternError{
		baseError: baseError{
			message:    "invalid pattern",
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Pattern: pattern,
	}
}

// Error returns the formatted error message.
func (e *PatternError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s %q: %v", e.message, e.Pattern, e.cause)
	}
	return fmt.Sprintf("%s %q", e.message, e.Pattern)
}

// IsFatal reports whether err must stop the program before the main loop
// starts. Only argument errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var argErr *ArgumentError
	if As(err, &argErr) {
		return true
	}
	return Is(err, ErrMissingCommand) || Is(err, ErrInvalidInterval) ||
		Is(err, ErrNotTerminal) || Is(err, ErrUnknownBackend)
}

// IsRetryable returns true if the next scheduled run may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ratchErr RatchError
	if As(err, &ratchErr) {
		return ratchErr.IsRetryable()
	}

	return Is(err, ErrTimeout) || Is(err, ErrBusy)
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var ratchErr RatchError
	if As(err, &ratchErr) {
		return ratchErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error. Errors that don't
// implement RatchError count as SeverityError, and nil as SeverityWarning.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityWarning
	}

	var ratchErr RatchError
	if As(err, &ratchErr) {
		return ratchErr.Severity()
	}

	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
