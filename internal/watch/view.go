package watch

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Iron-Ham/ratch/internal/search"
)

// StatusTTL is how long a status message stays on the status line.
const StatusTTL = 2 * time.Second

// Mode is the input mode of the view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearching
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSearching:
		return "searching"
	default:
		return "unknown"
	}
}

// Action is a side effect requested by a key that the view cannot perform
// itself.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionYank
)

// View holds the scroll and search state. It is confined to the main loop.
type View struct {
	// Cursor is the index of the first visible line. It may be negative or
	// past the end when clamping is disabled.
	Cursor     int
	Mode       Mode
	SearchText string
	ShowHelp   bool

	search      *search.Engine
	status      string
	statusUntil time.Time
}

// NewView creates a view in normal mode at the top of the buffer.
func NewView(opts search.Options) *View {
	return &View{search: search.NewEngine(opts)}
}

type viewSnapshot struct {
	cursor   int
	mode     Mode
	text     string
	help     bool
	status   string
	patterns *search.Pattern
}

func (v *View) snapshot() viewSnapshot {
	return viewSnapshot{v.Cursor, v.Mode, v.SearchText, v.ShowHelp, v.status, v.search.Pattern()}
}

// HandleKey applies one input event. lines is the current buffer and height
// the viewport height. It returns the action for the caller to perform and
// whether anything visible changed.
func (v *View) HandleKey(k Key, lines []string, height int, now time.Time) (Action, bool) {
	before := v.snapshot()

	var action Action
	switch {
	case k.Type == KeyCtrlC:
		action = ActionQuit
	case v.Mode == ModeSearching:
		v.handleSearching(k, now)
	default:
		action = v.handleNormal(k, lines, height, now)
	}

	return action, v.snapshot() != before
}

func (v *View) handleSearching(k Key, now time.Time) {
	switch k.Type {
	case KeyRune:
		if !unicode.IsPrint(k.Rune) {
			return
		}
		v.SearchText += string(k.Rune)
	case KeyBackspace:
		if v.SearchText == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(v.SearchText)
		v.SearchText = v.SearchText[:len(v.SearchText)-size]
	case KeyEnter:
		v.Mode = ModeNormal
		return
	case KeyEscape:
		v.Mode = ModeNormal
		v.SearchText = ""
	default:
		return
	}
	v.syncPattern(now)
}

func (v *View) handleNormal(k Key, lines []string, height int, now time.Time) Action {
	page := height - 1

	switch k.Type {
	case KeyDown:
		v.Cursor++
	case KeyUp:
		v.Cursor--
	case KeyPgDown:
		v.Cursor += page
	case KeyPgUp:
		v.Cursor -= page
	case KeyHome:
		v.Cursor = 0
	case KeyEnd:
		v.Cursor = Bottom(len(lines), height)
	case KeyEscape:
		if v.ShowHelp {
			v.ShowHelp = false
			break
		}
		v.clearSearch(now)
	case KeyRune:
		switch k.Rune {
		case '/':
			v.Mode = ModeSearching
			v.ShowHelp = false
			v.SearchText = ""
			v.syncPattern(now)
		case 'q', 'Q':
			return ActionQuit
		case 'j':
			v.Cursor++
		case 'k':
			v.Cursor--
		case 'g':
			v.Cursor = 0
		case 'G':
			v.Cursor = Bottom(len(lines), height)
		case ' ':
			v.Cursor += page
		case 'n':
			v.jump(lines, now, v.search.Next)
		case 'N':
			v.jump(lines, now, v.search.Previous)
		case 'y':
			return ActionYank
		case '?':
			v.ShowHelp = !v.ShowHelp
		}
	}
	return ActionNone
}

func (v *View) jump(lines []string, now time.Time, find func([]string, int) (int, bool)) {
	if v.search.Pattern() == nil {
		v.SetStatus("no active search", now)
		return
	}
	idx, ok := find(lines, v.Cursor)
	if !ok {
		v.SetStatus(fmt.Sprintf("pattern not found: %s", v.search.Pattern().Source()), now)
		return
	}
	v.Cursor = idx
}

func (v *View) clearSearch(now time.Time) {
	v.SearchText = ""
	v.syncPattern(now)
}

// syncPattern recompiles the search pattern if the text changed. A compile
// failure keeps the previous pattern and shows the error on the status line.
func (v *View) syncPattern(now time.Time) {
	if _, err := v.search.Update(v.SearchText); err != nil {
		v.SetStatus(err.Error(), now)
	}
}

// Pattern returns the active search pattern, or nil.
func (v *View) Pattern() *search.Pattern {
	return v.search.Pattern()
}

// SetSearchOptions changes how the search text is compiled and recompiles it.
func (v *View) SetSearchOptions(opts search.Options, now time.Time) {
	v.search.SetOptions(opts)
	v.syncPattern(now)
}

// Bottom returns the cursor that shows the last full page of a buffer with
// lineCount lines in a viewport of the given height.
func Bottom(lineCount, height int) int {
	return max(0, lineCount-height)
}

// Clamp keeps the cursor within [0, Bottom(lineCount, height)] and reports
// whether it moved.
func (v *View) Clamp(lineCount, height int) bool {
	clamped := min(max(v.Cursor, 0), Bottom(lineCount, height))
	if clamped == v.Cursor {
		return false
	}
	v.Cursor = clamped
	return true
}

// SetStatus shows msg on the status line for StatusTTL.
func (v *View) SetStatus(msg string, now time.Time) {
	v.status = msg
	v.statusUntil = now.Add(StatusTTL)
}

// Status returns the status message, or "" once it has expired.
func (v *View) Status(now time.Time) string {
	if v.status == "" || !now.Before(v.statusUntil) {
		return ""
	}
	return v.status
}

// ExpireStatus clears an expired status message and reports whether it did.
func (v *View) ExpireStatus(now time.Time) bool {
	if v.status == "" || now.Before(v.statusUntil) {
		return false
	}
	v.status = ""
	return true
}
