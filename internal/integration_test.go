// Package internal holds tests that drive the whole engine: a real command,
// the session and the main loop, against an in-memory screen.
package internal

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/ratch/internal/process"
	"github.com/Iron-Ham/ratch/internal/testutil"
	"github.com/Iron-Ham/ratch/internal/watch"
)

// screen is a watch.Terminal that records flushed frames and presses q once
// a frame satisfies done.
type screen struct {
	size    watch.Viewport
	rows    []string
	last    []string
	frames  int
	pending []watch.Key
	done    func(rows []string) bool
}

func (s *screen) PollEvent() (watch.Key, bool) {
	if len(s.pending) == 0 {
		return watch.Key{}, false
	}
	k := s.pending[0]
	s.pending = s.pending[1:]
	return k, true
}

func (s *screen) Size() (watch.Viewport, error) { return s.size, nil }
func (s *screen) Clear()                        { s.rows = s.rows[:0] }

func (s *screen) DrawLine(row int, text string) {
	for len(s.rows) <= row {
		s.rows = append(s.rows, "")
	}
	s.rows[row] = text
}

func (s *screen) Flush() error {
	s.last = slices.Clone(s.rows)
	s.frames++
	if s.done != nil && s.done(s.last) {
		s.pending = append(s.pending, watch.RuneKey('q'))
		s.done = nil
	}
	return nil
}

func runUntil(t *testing.T, script string, done func([]string) bool) *screen {
	t.Helper()
	session := watch.NewSession(watch.Options{
		Command: process.Command{Argv: []string{script}},
		Runner:  process.ExecRunner{},
		Settings: watch.Settings{
			Interval:         20 * time.Millisecond,
			Constrain:        true,
			CancelSuperseded: true,
		},
		MaxInFlight: 2,
		Prompt:      ":",
	})
	defer session.Close()

	scr := &screen{size: watch.Viewport{Width: 40, Height: 6}, done: done}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := watch.Run(ctx, session, scr, watch.LoopOptions{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("expected frame never appeared; last frame: %q", scr.last)
	}
	return scr
}

func TestWatchShowsCommandOutput(t *testing.T) {
	script := testutil.WriteScript(t, "out.sh", `printf 'alpha\nbeta\tgamma\n'`)

	scr := runUntil(t, script, func(rows []string) bool {
		return len(rows) > 0 && strings.HasPrefix(rows[0], "alpha")
	})

	if got := strings.TrimRight(scr.last[1], " "); got != "beta    gamma" {
		t.Errorf("row 1 = %q, want tab expanded", got)
	}
	status := scr.last[len(scr.last)-1]
	if !strings.HasPrefix(status, ":") || !strings.Contains(status, "#") {
		t.Errorf("status line = %q", status)
	}
}

func TestWatchShowsFailure(t *testing.T) {
	script := testutil.WriteScript(t, "fail.sh", "echo partial; exit 3")

	scr := runUntil(t, script, func(rows []string) bool {
		return len(rows) > 0 && strings.HasPrefix(rows[0], "error: ")
	})

	if !strings.Contains(scr.last[0], "exit") {
		t.Errorf("failure line = %q, want the exit status", scr.last[0])
	}
}
