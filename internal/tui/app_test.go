package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/ratch/internal/process"
	"github.com/Iron-Ham/ratch/internal/watch"
)

type nopRunner struct{}

func (nopRunner) Run(context.Context, process.Command) (string, error) { return "", nil }

func newSession(t *testing.T) *watch.Session {
	t.Helper()
	s := watch.NewSession(watch.Options{
		Command:  process.Command{Argv: []string{"true"}},
		Runner:   nopRunner{},
		Settings: watch.Settings{Interval: time.Hour, Constrain: true},
	})
	t.Cleanup(s.Close)
	return s
}

func runApp(t *testing.T, ctx context.Context, app *App) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("App.Run did not return")
		return nil
	}
}

func TestApp_QuitKey(t *testing.T) {
	s := newSession(t)
	app := New(s, Options{
		Input:  strings.NewReader("q"),
		Output: &bytes.Buffer{},
	})

	if err := runApp(t, context.Background(), app); err != nil {
		t.Fatalf("Run = %v", err)
	}
	if !s.Quit() {
		t.Error("session should have seen the quit key")
	}
}

func TestApp_ContextCancel(t *testing.T) {
	s := newSession(t)
	app := New(s, Options{
		Input:  strings.NewReader(""),
		Output: &bytes.Buffer{},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := runApp(t, ctx, app); err != nil {
		t.Errorf("Run = %v, want nil on cancel", err)
	}
}
