package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/ratch/internal/search"
)

const tabWidth = 8

// Viewport is the drawable area of the terminal.
type Viewport struct {
	Width  int
	Height int
}

// Row is one line of output as it appears on screen.
type Row struct {
	// Text is the line without its trailing newline, tabs expanded.
	Text string
	// Blank marks a row past either end of the buffer.
	Blank bool
	// Match is the first match of the active pattern, in rune offsets of Text.
	Match    search.Span
	HasMatch bool
}

// StatusLine is the last row of the screen.
type StatusLine struct {
	// Prompt is "/" plus the search text while searching, else the prompt glyph.
	Prompt  string
	Message string
	// Info is the right-aligned summary of the refresh state.
	Info string
}

// Frame is everything drawn for one screen update.
type Frame struct {
	Rows   []Row
	Status StatusLine
	// HasStatus is false only for a viewport with no rows at all.
	HasStatus bool
}

// Info carries the refresh state shown on the status line.
type Info struct {
	Prompt string
	// Help is shown in place of the buffer while the help overlay is open.
	Help       []string
	Interval   time.Duration
	Generation Generation
	Updated    time.Time
	Now        time.Time
}

// Render projects the view onto a viewport. It draws Height-1 rows starting
// at the cursor followed by the status line. Rows outside the buffer are
// blank.
func Render(v *View, lines []string, vp Viewport, info Info) Frame {
	if vp.Height < 1 {
		return Frame{}
	}

	f := Frame{
		Rows:      make([]Row, vp.Height-1),
		HasStatus: true,
		Status:    renderStatus(v, info),
	}

	if v.ShowHelp {
		for i := range f.Rows {
			if i < len(info.Help) {
				f.Rows[i] = Row{Text: info.Help[i]}
			} else {
				f.Rows[i] = Row{Blank: true}
			}
		}
		return f
	}

	pattern := v.Pattern()
	for i := range f.Rows {
		idx := v.Cursor + i
		if idx < 0 || idx >= len(lines) {
			f.Rows[i] = Row{Blank: true}
			continue
		}
		raw := strings.TrimSuffix(lines[idx], "\n")
		row := Row{Text: expandTabs(raw)}
		// Match the line as captured, the way n and N do, then move the span
		// onto the expanded text.
		if span, ok := pattern.FirstMatch(raw); ok {
			row.Match = search.Span{Start: tabColumn(raw, span.Start), End: tabColumn(raw, span.End)}
			row.HasMatch = true
		}
		f.Rows[i] = row
	}
	return f
}

func renderStatus(v *View, info Info) StatusLine {
	s := StatusLine{Prompt: info.Prompt, Message: v.Status(info.Now)}
	if v.Mode == ModeSearching {
		s.Prompt = "/" + v.SearchText
	}

	s.Info = fmt.Sprintf("every %.1fs", info.Interval.Seconds())
	if info.Generation == 0 {
		s.Info += "  waiting"
	} else {
		s.Info += fmt.Sprintf("  #%d  %s", info.Generation, info.Updated.Format(time.TimeOnly))
	}
	return s
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

// tabColumn returns the column that rune n of s lands on once tabs are
// expanded. n may equal the rune count.
func tabColumn(s string, n int) int {
	col, i := 0, 0
	for _, r := range s {
		if i == n {
			break
		}
		if r == '\t' {
			col += tabWidth - col%tabWidth
		} else {
			col++
		}
		i++
	}
	return col
}

// Theme styles the parts of a frame.
type Theme interface {
	Text(s string) string
	Match(s string) string
	Prompt(s string) string
	Message(s string) string
	Info(s string) string
}

// PlainTheme draws without any styling.
type PlainTheme struct{}

func (PlainTheme) Text(s string) string    { return s }
func (PlainTheme) Match(s string) string   { return s }
func (PlainTheme) Prompt(s string) string  { return s }
func (PlainTheme) Message(s string) string { return s }
func (PlainTheme) Info(s string) string    { return s }

// Paint turns the frame into one styled string per screen row, each cut to
// width cells. A width of 0 or less disables truncation.
func (f Frame) Paint(theme Theme, width int) []string {
	out := make([]string, 0, len(f.Rows)+1)
	for _, row := range f.Rows {
		out = append(out, fit(paintRow(theme, row), width))
	}
	if f.HasStatus {
		out = append(out, fit(paintStatus(theme, f.Status, width), width))
	}
	return out
}

func paintRow(theme Theme, row Row) string {
	if row.Blank {
		return ""
	}
	if !row.HasMatch {
		return theme.Text(row.Text)
	}
	runes := []rune(row.Text)
	start := min(row.Match.Start, len(runes))
	end := min(row.Match.End, len(runes))
	var sb strings.Builder
	if start > 0 {
		sb.WriteString(theme.Text(string(runes[:start])))
	}
	if end > start {
		sb.WriteString(theme.Match(string(runes[start:end])))
	}
	if end < len(runes) {
		sb.WriteString(theme.Text(string(runes[end:])))
	}
	return sb.String()
}

func paintStatus(theme Theme, s StatusLine, width int) string {
	left := theme.Prompt(s.Prompt)
	used := ansi.StringWidth(s.Prompt)
	if s.Message != "" {
		left += " " + theme.Message(s.Message)
		used += 1 + ansi.StringWidth(s.Message)
	}
	if width <= 0 {
		return left + "  " + theme.Info(s.Info)
	}
	gap := width - used - ansi.StringWidth(s.Info)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + theme.Info(s.Info)
}

func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "")
}
