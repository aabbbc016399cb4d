// Package process runs the watched command and captures its combined output.
package process

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/Iron-Ham/ratch/internal/errors"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the command itself has been killed.
const waitDelay = time.Second

// Command is the command line to run on every refresh.
type Command struct {
	// Argv is the program and its arguments, passed verbatim.
	Argv []string
	// Shell, when set, runs `Shell -c "<Argv joined by spaces>"` instead.
	Shell string
}

// String returns the command line as typed.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Validate reports a missing command.
func (c Command) Validate() error {
	if len(c.Argv) == 0 || strings.TrimSpace(c.String()) == "" {
		return errors.ErrMissingCommand
	}
	return nil
}

// cmd builds the exec.Cmd for c. The process is killed when ctx is done.
func (c Command) cmd(ctx context.Context) (*exec.Cmd, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var cmd *exec.Cmd
	if c.Shell != "" {
		cmd = exec.CommandContext(ctx, c.Shell, "-c", c.String())
	} else {
		cmd = exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	}
	cmd.WaitDelay = waitDelay
	return cmd, nil
}

// Runner runs a command to completion and returns its merged stdout and
// stderr. A spawn failure, an I/O error or a non-zero exit is returned as an
// error; the output captured so far is still returned alongside it.
//
// Implementations must be safe for concurrent use: the executor calls Run from
// one goroutine per dispatched generation.
type Runner interface {
	Run(ctx context.Context, c Command) (string, error)
}

// ExecRunner runs commands with pipes for stdout and stderr.
type ExecRunner struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	cmd, err := c.cmd(ctx)
	if err != nil {
		return "", err
	}
	if r.Env != nil {
		cmd.Env = r.Env
	}

	// One writer for both streams keeps them interleaved in output order.
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Start(); err != nil {
		return "", errors.Wrap(err, "failed to start command")
	}
	if err := cmd.Wait(); err != nil {
		return out.String(), describe(err)
	}
	return out.String(), nil
}

// describe labels an error returned by Wait.
func describe(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.Wrap(err, "command exited")
	}
	return err
}

// New returns the Runner for the given mode.
func New(pty bool) Runner {
	if pty {
		return PTYRunner{}
	}
	return ExecRunner{}
}
