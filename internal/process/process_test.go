package process

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/ratch/internal/errors"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_String(t *testing.T) {
	c := Command{Argv: []string{"ls", "-l", "/tmp"}}
	if c.String() != "ls -l /tmp" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantErr bool
	}{
		{"nil", nil, true},
		{"blank", []string{"  "}, true},
		{"ok", []string{"date"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Command{Argv: tt.argv}.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrMissingCommand) {
				t.Errorf("error %v is not ErrMissingCommand", err)
			}
		})
	}
}

func TestExecRunner_CapturesCombinedOutput(t *testing.T) {
	requireSh(t)

	out, err := ExecRunner{}.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo out; echo err 1>&2"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "out\n") || !strings.Contains(out, "err\n") {
		t.Errorf("output = %q, want both streams", out)
	}
}

func TestExecRunner_Shell(t *testing.T) {
	requireSh(t)

	out, err := ExecRunner{}.Run(context.Background(), Command{
		Argv:  []string{"printf", "A", "|", "tr", "A", "B"},
		Shell: "sh",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "B" {
		t.Errorf("output = %q, want %q", out, "B")
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireSh(t)

	out, err := ExecRunner{}.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo partial; exit 3"},
	})
	if err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("error = %v, want exit status", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Error("error should wrap *exec.ExitError")
	}
	if out != "partial\n" {
		t.Errorf("output = %q, want partial output kept", out)
	}
}

func TestExecRunner_SpawnFailure(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{
		Argv: []string{"/nonexistent/ratch-test-binary"},
	})
	if err == nil {
		t.Fatal("expected a spawn error")
	}
	if !strings.Contains(err.Error(), "failed to start command") {
		t.Errorf("error = %v", err)
	}
}

func TestExecRunner_StartFailures(t *testing.T) {
	dir := t.TempDir()
	notExecutable := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(notExecutable, []byte("#!/bin/sh\necho hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		argv   []string
		target error
	}{
		{"missing path", []string{filepath.Join(dir, "missing")}, fs.ErrNotExist},
		{"not on PATH", []string{"ratch-no-such-program"}, exec.ErrNotFound},
		{"not executable", []string{notExecutable}, fs.ErrPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExecRunner{}.Run(context.Background(), Command{Argv: tt.argv})
			if err == nil {
				t.Fatal("expected a start error")
			}
			if !strings.HasPrefix(err.Error(), "failed to start command: ") {
				t.Errorf("error = %v, want it labelled as a start failure", err)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want it to wrap %v", err, tt.target)
			}
			if out != "" {
				t.Errorf("output = %q, want none", out)
			}
		})
	}
}

func TestExecRunner_MissingCommand(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{})
	if !errors.Is(err, errors.ErrMissingCommand) {
		t.Errorf("error = %v, want ErrMissingCommand", err)
	}
}

func TestExecRunner_ContextCancelKillsCommand(t *testing.T) {
	requireSh(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, Command{Argv: []string{"sleep", "10"}})
	if err == nil {
		t.Fatal("expected an error when the context expires")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("command was not killed promptly (%v)", elapsed)
	}
}

func TestExecRunner_Env(t *testing.T) {
	requireSh(t)

	out, err := ExecRunner{Env: []string{"RATCH_TEST=hello", "PATH=/usr/bin:/bin"}}.Run(
		context.Background(),
		Command{Argv: []string{"sh", "-c", "echo $RATCH_TEST"}},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("output = %q", out)
	}
}

func TestPTYRunner(t *testing.T) {
	requireSh(t)

	out, err := PTYRunner{}.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "test -t 1 && echo tty"},
	})
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	if !strings.Contains(out, "tty") {
		t.Errorf("output = %q, want command to see a terminal", out)
	}
}

func TestPTYRunner_NonZeroExit(t *testing.T) {
	requireSh(t)

	_, err := PTYRunner{Rows: 10, Cols: 40}.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "exit 2"},
	})
	if err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
	if strings.Contains(err.Error(), "failed to start") {
		t.Skipf("pty unavailable: %v", err)
	}
	if !strings.Contains(err.Error(), "exit status 2") {
		t.Errorf("error = %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(false).(ExecRunner); !ok {
		t.Error("New(false) should return an ExecRunner")
	}
	if _, ok := New(true).(PTYRunner); !ok {
		t.Error("New(true) should return a PTYRunner")
	}
}
