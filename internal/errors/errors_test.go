package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "severity(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgumentError(t *testing.T) {
	err := NewArgumentError("interval", "abc", ErrInvalidInterval)

	if got, want := err.Error(), "invalid argument [interval=abc]: invalid interval"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInterval) {
		t.Error("errors.Is(err, ErrInvalidInterval) = false, want true")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !IsFatal(err) {
		t.Error("IsFatal() = false, want true")
	}
}

func TestArgumentError_WithMessage(t *testing.T) {
	err := NewArgumentError("", "", ErrMissingCommand).WithMessage("usage: ratch command")
	if got, want := err.Error(), "usage: ratch command: missing command"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExecutionError(t *testing.T) {
	cause := fmt.Errorf("exit status 2")
	err := NewExecutionError("command failed", cause).
		WithGeneration(7).
		WithCommand([]string{"ls", "-l"})

	if got, want := err.Error(), "run #7 [ls -l]: command failed: exit status 2"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable() = false, want true")
	}
	if IsFatal(err) {
		t.Error("IsFatal() = true, want false")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
	if GetSeverity(err) != SeverityError {
		t.Errorf("GetSeverity() = %v, want %v", GetSeverity(err), SeverityError)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	err := NewExecutionError("timed out", ErrTimeout)
	wrapped := Wrap(err, "dispatch")

	var execErr *ExecutionError
	if !As(wrapped, &execErr) {
		t.Fatal("As(*ExecutionError) = false, want true")
	}
	if !Is(wrapped, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}
}

func TestExecutionError_Reason(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"no cause", nil, "command failed"},
		{"plain cause", errors.New("exit status 3"), "exit status 3"},
		{
			"wrapped exec error",
			Wrap(&exec.Error{Name: "nope", Err: exec.ErrNotFound}, "failed to start command"),
			`exec: "nope": executable file not found in $PATH`,
		},
		{
			"wrapped path error",
			Wrap(&fs.PathError{Op: "fork/exec", Path: "/bin/nope", Err: fs.ErrNotExist}, "failed to start command"),
			"fork/exec /bin/nope: file does not exist",
		},
		{"panic", fmt.Errorf("%w: %v", ErrPanic, "boom"), "worker panicked: boom"},
		{"timeout", fmt.Errorf("%w (%v)", ErrTimeout, "signal: killed"), "run timed out (signal: killed)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExecutionError("command failed", tt.cause).
				WithGeneration(12).
				WithCommand([]string{"ls", "-l"})
			if got := err.Reason(); got != tt.want {
				t.Errorf("Reason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPatternError(t *testing.T) {
	err := NewPatternError("(err", fmt.Errorf("missing closing )"))

	if got, want := err.Error(), `invalid pattern "(err": missing closing )`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if IsFatal(err) {
		t.Error("IsFatal() = true, want false")
	}
	if IsRetryable(err) {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestClassification_PlainErrors(t *testing.T) {
	plain := New("boom")

	if IsFatal(nil) || IsRetryable(nil) || IsUserFacing(nil) {
		t.Error("nil error must not classify as anything")
	}
	if GetSeverity(nil) != SeverityWarning {
		t.Errorf("GetSeverity(nil) = %v, want warning", GetSeverity(nil))
	}
	if GetSeverity(plain) != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want error", GetSeverity(plain))
	}
	if IsUserFacing(plain) {
		t.Error("plain errors are not user facing")
	}
	if !IsRetryable(Wrap(ErrBusy, "dispatch")) {
		t.Error("ErrBusy should be retryable")
	}
	if !IsFatal(Wrap(ErrMissingCommand, "parse args")) {
		t.Error("wrapped ErrMissingCommand should be fatal")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}
