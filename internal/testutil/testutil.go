// Package testutil provides helpers shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// SkipIfMissing skips the test when a program is not on PATH.
func SkipIfMissing(t *testing.T, program string) {
	t.Helper()
	if _, err := exec.LookPath(program); err != nil {
		t.Skipf("%s not found in PATH", program)
	}
}

// WriteScript writes an executable /bin/sh script into a temporary
// directory and returns its path.
func WriteScript(t *testing.T, name, body string) string {
	t.Helper()
	SkipIfMissing(t, "sh")
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

// ProjectRoot returns the module root, assuming the test runs in a package
// directory below it.
func ProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above the working directory")
		}
		dir = parent
	}
}
