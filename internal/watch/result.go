package watch

import (
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/ratch/internal/errors"
)

// Result is the outcome of one run, sent once from a worker to the main loop.
// It must not be modified after it is sent.
type Result struct {
	Generation Generation
	// Lines is the captured output, one entry per line including its "\n".
	Lines []string
	// Err is set when the run failed; Lines is then empty.
	Err error
	// Duration is how long the run took.
	Duration time.Duration
	// Finished is when the run completed.
	Finished time.Time
}

// Failed reports whether the run failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Buffer returns the line buffer that replaces the screen contents when the
// result is admitted. A failure is shown as a single line.
func (r Result) Buffer() []string {
	if r.Failed() {
		return FailureLines(r.Err)
	}
	return r.Lines
}

// SplitLines splits captured output into display lines. Each line keeps its
// trailing newline; the last line has none if the output did not end with one.
// Escape sequences are removed and a carriage return inside a line discards
// the text before it, the way a terminal would overwrite it.
func SplitLines(output string) []string {
	if output == "" {
		return nil
	}
	parts := strings.SplitAfter(output, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]string, len(parts))
	for i, part := range parts {
		lines[i] = cleanLine(part)
	}
	return lines
}

func cleanLine(line string) string {
	body, nl := strings.CutSuffix(line, "\n")
	body = ansi.Strip(body)
	body = strings.TrimRight(body, "\r")
	if i := strings.LastIndexByte(body, '\r'); i >= 0 {
		body = body[i+1:]
	}
	if nl {
		return body + "\n"
	}
	return body
}

// FailureLines renders a failed run as a one-line buffer. The cause comes
// first so it survives truncation to the terminal width; the run number is
// already on the status line.
func FailureLines(err error) []string {
	msg := err.Error()
	var execErr *errors.ExecutionError
	if errors.As(err, &execErr) {
		msg = execErr.Reason()
		if execErr.Command != "" {
			msg += " (" + execErr.Command + ")"
		}
	}
	msg = strings.ReplaceAll(msg, "\n", " ")
	return []string{"error: " + msg + "\n"}
}
