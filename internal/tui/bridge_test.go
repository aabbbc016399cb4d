package tui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/ratch/internal/watch"
)

func TestTerminal_PollEvent(t *testing.T) {
	term := NewTerminal()
	if _, ok := term.PollEvent(); ok {
		t.Fatal("empty terminal reported an event")
	}

	term.push(watch.RuneKey('j'))
	term.push(watch.Key{Type: watch.KeyEnter})

	k, ok := term.PollEvent()
	if !ok || k != watch.RuneKey('j') {
		t.Errorf("first event = %v, %v", k, ok)
	}
	k, ok = term.PollEvent()
	if !ok || k.Type != watch.KeyEnter {
		t.Errorf("second event = %v, %v", k, ok)
	}
	if _, ok := term.PollEvent(); ok {
		t.Error("queue should be empty")
	}
}

func TestTerminal_DropsWhenFull(t *testing.T) {
	term := NewTerminal()
	for range eventBuffer + 3 {
		term.push(watch.RuneKey('x'))
	}
	if term.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", term.Dropped())
	}
}

func TestTerminal_Size(t *testing.T) {
	term := NewTerminal()
	if _, err := term.Size(); err == nil {
		t.Error("Size should fail before the first window size message")
	}
	term.resize(watch.Viewport{Width: 80, Height: 24})
	vp, err := term.Size()
	if err != nil || vp != (watch.Viewport{Width: 80, Height: 24}) {
		t.Errorf("Size() = %v, %v", vp, err)
	}
}

func TestTerminal_Flush(t *testing.T) {
	term := NewTerminal()

	// Without a program, frames are dropped.
	term.DrawLine(0, "lost")
	if err := term.Flush(); err != nil {
		t.Fatalf("Flush without program = %v", err)
	}

	var sent []tea.Msg
	term.Attach(func(msg tea.Msg) { sent = append(sent, msg) })

	term.Clear()
	term.DrawLine(2, "c")
	term.DrawLine(0, "a")
	term.DrawLine(-1, "ignored")
	if err := term.Flush(); err != nil {
		t.Fatal(err)
	}

	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	want := frameMsg{"a", "", "c"}
	if !reflect.DeepEqual(sent[0], want) {
		t.Errorf("frame = %q, want %q", sent[0], want)
	}

	// The sent frame must not change when the next one is drawn.
	term.Clear()
	term.DrawLine(0, "z")
	if !reflect.DeepEqual(sent[0], want) {
		t.Errorf("sent frame was modified: %q", sent[0])
	}
}
