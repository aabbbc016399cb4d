package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/ratch/internal/process"
)

// runnerFunc adapts a function to process.Runner.
type runnerFunc func(ctx context.Context, c process.Command) (string, error)

func (f runnerFunc) Run(ctx context.Context, c process.Command) (string, error) {
	return f(ctx, c)
}

func staticRunner(out string) process.Runner {
	return runnerFunc(func(context.Context, process.Command) (string, error) {
		return out, nil
	})
}

// blockingRunner blocks every run until its context is done.
func blockingRunner() process.Runner {
	return runnerFunc(func(ctx context.Context, _ process.Command) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
}

var testCommand = process.Command{Argv: []string{"echo", "A"}}

func recv(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Result{}
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// fakeClock advances only when told to, or when the loop sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeTerminal records drawn frames and replays queued keys.
type fakeTerminal struct {
	size    Viewport
	keys    []Key
	rows    map[int]string
	flushes int
	clears  int
	// afterPolls queues quitKey once the terminal has been polled this many times.
	afterPolls int
	polls      int
	quitKey    *Key
}

func newFakeTerminal(width, height int) *fakeTerminal {
	return &fakeTerminal{size: Viewport{Width: width, Height: height}, rows: map[int]string{}}
}

func (f *fakeTerminal) PollEvent() (Key, bool) {
	f.polls++
	if f.quitKey != nil && f.polls >= f.afterPolls {
		k := *f.quitKey
		f.quitKey = nil
		return k, true
	}
	if len(f.keys) == 0 {
		return Key{}, false
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k, true
}

func (f *fakeTerminal) Size() (Viewport, error) { return f.size, nil }
func (f *fakeTerminal) Clear() {
	f.clears++
	f.rows = map[int]string{}
}
func (f *fakeTerminal) DrawLine(row int, text string) { f.rows[row] = text }
func (f *fakeTerminal) Flush() error {
	f.flushes++
	return nil
}

func bufferOf(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line\n"
	}
	return lines
}
