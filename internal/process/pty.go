package process

import (
	"bytes"
	"context"
	"io"
	"syscall"

	"github.com/creack/pty"

	"github.com/Iron-Ham/ratch/internal/errors"
)

// Default pseudo-terminal size for commands that format to the terminal width.
const (
	DefaultRows = 24
	DefaultCols = 80
)

// PTYRunner runs commands attached to a pseudo-terminal so that programs which
// only colorize or line-buffer for a tty behave as they would interactively.
// Escape sequences are stripped later, when the output is split into lines.
type PTYRunner struct {
	Rows uint16
	Cols uint16
}

// Run implements Runner.
func (r PTYRunner) Run(ctx context.Context, c Command) (string, error) {
	cmd, err := c.cmd(ctx)
	if err != nil {
		return "", err
	}

	size := &pty.Winsize{Rows: r.Rows, Cols: r.Cols}
	if size.Rows == 0 {
		size.Rows = DefaultRows
	}
	if size.Cols == 0 {
		size.Cols = DefaultCols
	}

	f, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return "", errors.Wrap(err, "failed to start command")
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	_, copyErr := io.Copy(&buf, f)
	waitErr := cmd.Wait()

	// Linux reports EIO on the master once the slave side is closed.
	if copyErr != nil && !errors.Is(copyErr, syscall.EIO) {
		return buf.String(), errors.Wrap(copyErr, "failed to read output")
	}
	if waitErr != nil {
		return buf.String(), describe(waitErr)
	}
	return buf.String(), nil
}
