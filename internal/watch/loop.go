package watch

import (
	"context"
	"time"
)

// DefaultQuantum is the main loop tick.
const DefaultQuantum = 8 * time.Millisecond

// Terminal is the screen and keyboard the main loop drives. Implementations
// exist for each terminal backend; the engine does not know which one it uses.
type Terminal interface {
	// PollEvent returns the next pending input event without blocking.
	PollEvent() (Key, bool)
	// Size returns the current viewport.
	Size() (Viewport, error)
	// Clear starts a new frame.
	Clear()
	// DrawLine draws text on the given row of the frame, counting from 0.
	DrawLine(row int, text string)
	// Flush shows the frame.
	Flush() error
}

// Clock abstracts time for the main loop.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// LoopOptions configures Run.
type LoopOptions struct {
	Quantum time.Duration
	Theme   Theme
	Clock   Clock
}

// Run drives the session until the user quits or ctx is canceled. Each tick
// it reads the viewport and pending keys, advances the session, redraws if
// anything changed and sleeps for the rest of the quantum. It returns an
// error only if the terminal can no longer be drawn to.
func Run(ctx context.Context, s *Session, term Terminal, opts LoopOptions) error {
	quantum := opts.Quantum
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	theme := opts.Theme
	if theme == nil {
		theme = PlainTheme{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	for ctx.Err() == nil {
		now := clock.Now()
		done, err := Step(s, term, theme, now)
		if done || err != nil {
			return err
		}
		if elapsed := clock.Now().Sub(now); elapsed < quantum {
			clock.Sleep(quantum - elapsed)
		}
	}
	return nil
}

// Step runs a single tick of the main loop at now and reports whether the
// user quit.
func Step(s *Session, term Terminal, theme Theme, now time.Time) (bool, error) {
	if vp, err := term.Size(); err == nil {
		s.Resize(vp)
	}

	var keys []Key
	for {
		k, ok := term.PollEvent()
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		s.HandleKeys(keys, now)
	}
	if s.Quit() {
		return true, nil
	}

	s.Tick(now)

	if !s.Dirty() {
		return false, nil
	}
	term.Clear()
	for row, line := range s.Frame(now).Paint(theme, s.Viewport().Width) {
		term.DrawLine(row, line)
	}
	if err := term.Flush(); err != nil {
		return false, err
	}
	s.ClearDirty()
	return false, nil
}
