// Package terminal is the raw terminal backend. It puts the controlling
// terminal into raw mode, decodes keys itself and draws frames with termenv
// control sequences.
package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
	"github.com/sourcegraph/conc"
	"golang.org/x/term"

	"github.com/Iron-Ham/ratch/internal/logging"
	"github.com/Iron-Ham/ratch/internal/watch"
)

const eventBuffer = 256

// Options configures Open.
type Options struct {
	AltScreen bool
	Logger    *logging.Logger
}

// Terminal implements watch.Terminal on a raw mode tty.
type Terminal struct {
	in     *os.File
	out    *os.File
	state  *term.State
	reader cancelreader.CancelReader
	events chan watch.Key
	wg     conc.WaitGroup
	opts   Options
	logger *logging.Logger

	profile termenv.Profile
	buf     bytes.Buffer
	output  *termenv.Output
	rows    int
	last    int

	closeOnce sync.Once
}

// Open switches in to raw mode and starts reading keys. Close must be called
// to restore the terminal.
func Open(in, out *os.File, opts Options) (*Terminal, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		_ = term.Restore(int(in.Fd()), state)
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	t := &Terminal{
		in:      in,
		out:     out,
		state:   state,
		reader:  reader,
		events:  make(chan watch.Key, eventBuffer),
		opts:    opts,
		logger:  logger,
		profile: termenv.NewOutput(out).ColorProfile(),
	}
	t.output = termenv.NewOutput(&t.buf, termenv.WithProfile(t.profile))

	if opts.AltScreen {
		t.output.AltScreen()
	}
	t.output.HideCursor()
	t.output.ClearScreen()
	if err := t.write(); err != nil {
		_ = t.Close()
		return nil, err
	}

	t.wg.Go(t.readLoop)
	return t, nil
}

// Profile returns the color profile detected for the output.
func (t *Terminal) Profile() termenv.Profile {
	return t.profile
}

func (t *Terminal) readLoop() {
	var dec Decoder
	p := make([]byte, 256)
	for {
		n, err := t.reader.Read(p)
		for _, k := range dec.Feed(p[:n]) {
			select {
			case t.events <- k:
			default:
				t.logger.Warn("dropped key", "key", k.String())
			}
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) && !errors.Is(err, io.EOF) {
				t.logger.Error("input read failed", "error", err.Error())
			}
			return
		}
	}
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

// Size implements watch.Terminal.
func (t *Terminal) Size() (watch.Viewport, error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return watch.Viewport{}, fmt.Errorf("failed to get terminal size: %w", err)
	}
	return watch.Viewport{Width: w, Height: h}, nil
}

// Clear implements watch.Terminal.
func (t *Terminal) Clear() {
	t.buf.Reset()
	t.rows = 0
}

// DrawLine implements watch.Terminal.
func (t *Terminal) DrawLine(row int, text string) {
	if row < 0 {
		return
	}
	t.output.MoveCursor(row+1, 1)
	_, _ = t.buf.WriteString(text)
	t.output.ClearLineRight()
	t.rows = max(t.rows, row+1)
}

// Flush implements watch.Terminal. Rows drawn by the previous frame but not
// by this one are cleared.
func (t *Terminal) Flush() error {
	for row := t.rows; row < t.last; row++ {
		t.output.MoveCursor(row+1, 1)
		t.output.ClearLine()
	}
	t.last = t.rows
	return t.write()
}

func (t *Terminal) write() error {
	if _, err := t.out.Write(t.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	t.buf.Reset()
	return nil
}

// Close stops the input reader and restores the terminal.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.reader.Cancel()
		t.wg.Wait()
		_ = t.reader.Close()

		t.buf.Reset()
		t.output.ShowCursor()
		if t.opts.AltScreen {
			t.output.ExitAltScreen()
		} else {
			t.output.MoveCursor(t.last+1, 1)
		}
		werr := t.write()
		err = errors.Join(werr, term.Restore(int(t.in.Fd()), t.state))
	})
	return err
}
