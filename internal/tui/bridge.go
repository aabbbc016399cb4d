package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/ratch/internal/watch"
)

// eventBuffer bounds keys queued between two main loop ticks.
const eventBuffer = 256

// frameMsg carries a finished frame from the main loop to the program.
type frameMsg []string

// Terminal connects the watch main loop to a bubbletea program. Key and
// window size messages arrive on the program's goroutine; frames are sent
// back to it as messages. It implements watch.Terminal.
type Terminal struct {
	events chan watch.Key

	mu      sync.Mutex
	size    watch.Viewport
	sized   bool
	dropped int
	send    func(tea.Msg)

	// frame is only touched by the main loop.
	frame []string
}

// NewTerminal creates a Terminal. Frames are dropped until Attach is called.
func NewTerminal() *Terminal {
	return &Terminal{events: make(chan watch.Key, eventBuffer)}
}

// Attach routes flushed frames to send, usually (*tea.Program).Send.
func (t *Terminal) Attach(send func(tea.Msg)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.send = send
}

func (t *Terminal) push(k watch.Key) {
	select {
	case t.events <- k:
	default:
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()
	}
}

func (t *Terminal) resize(vp watch.Viewport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.size = vp
	t.sized = true
}

// Dropped returns how many keys were discarded because the loop fell behind.
func (t *Terminal) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// PollEvent implements watch.Terminal.
func (t *Terminal) PollEvent() (watch.Key, bool) {
	select {
	case k := <-t.events:
		return k, true
	default:
		return watch.Key{}, false
	}
}

// Size implements watch.Terminal. It fails until the program has reported
// the window size.
func (t *Terminal) Size() (watch.Viewport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sized {
		return watch.Viewport{}, fmt.Errorf("window size not known yet")
	}
	return t.size, nil
}

// Clear implements watch.Terminal.
func (t *Terminal) Clear() {
	t.frame = t.frame[:0]
}

// DrawLine implements watch.Terminal.
func (t *Terminal) DrawLine(row int, text string) {
	if row < 0 {
		return
	}
	for len(t.frame) <= row {
		t.frame = append(t.frame, "")
	}
	t.frame[row] = text
}

// Flush implements watch.Terminal.
func (t *Terminal) Flush() error {
	t.mu.Lock()
	send := t.send
	t.mu.Unlock()
	if send == nil {
		return nil
	}
	frame := make(frameMsg, len(t.frame))
	copy(frame, t.frame)
	send(frame)
	return nil
}
