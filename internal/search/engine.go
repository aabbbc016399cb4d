// Package search compiles the search text typed in the view into a pattern and
// finds match spans in captured output lines.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Iron-Ham/ratch/internal/errors"
)

// Options controls how search text is compiled.
type Options struct {
	// IgnoreCase compiles patterns case-insensitively.
	IgnoreCase bool
}

// Span is a match position within a line, in rune offsets. End is exclusive.
type Span struct {
	Start int
	End   int
}

// Pattern is a compiled search pattern.
type Pattern struct {
	source string
	regex  *regexp.Regexp
}

// Compile compiles text as a regular expression. An empty text yields a nil
// pattern and no error. Compile failures are returned as *errors.PatternError.
func Compile(text string, opts Options) (*Pattern, error) {
	if text == "" {
		return nil, nil
	}
	expr := text
	if opts.IgnoreCase {
		expr = "(?i)" + text
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.NewPatternError(text, err)
	}
	return &Pattern{source: text, regex: re}, nil
}

// Source returns the search text the pattern was compiled from.
func (p *Pattern) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// FirstMatch returns the first match in line. A trailing newline is not part
// of the searchable text.
func (p *Pattern) FirstMatch(line string) (Span, bool) {
	if p == nil {
		return Span{}, false
	}
	line = strings.TrimSuffix(line, "\n")
	loc := p.regex.FindStringIndex(line)
	if loc == nil {
		return Span{}, false
	}
	start := utf8.RuneCountInString(line[:loc[0]])
	return Span{Start: start, End: start + utf8.RuneCountInString(line[loc[0]:loc[1]])}, true
}

// Matches reports whether line contains a match.
func (p *Pattern) Matches(line string) bool {
	_, ok := p.FirstMatch(line)
	return ok
}

// Engine memoizes the compiled pattern for the current search text. The
// pattern is only recompiled when the text differs from the last text a
// compile was attempted for.
type Engine struct {
	opts     Options
	pattern  *Pattern // last successfully compiled pattern, nil for none
	compiled string   // text of the last compile attempt
	attempts int
}

// NewEngine creates a new search engine instance.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Update brings the pattern in line with text. It reports whether a compile
// was attempted. A failed compile returns the error and leaves the previously
// compiled pattern active. An empty text clears the pattern.
func (e *Engine) Update(text string) (bool, error) {
	if text == e.compiled {
		return false, nil
	}
	e.compiled = text
	if text == "" {
		e.pattern = nil
		return true, nil
	}

	e.attempts++
	p, err := Compile(text, e.opts)
	if err != nil {
		return true, err
	}
	e.pattern = p
	return true, nil
}

// SetOptions changes the compile options. The next Update recompiles even if
// the text has not changed.
func (e *Engine) SetOptions(opts Options) {
	if opts == e.opts {
		return
	}
	e.opts = opts
	e.invalidate()
}

// Options returns the compile options in use.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) invalidate() {
	if e.compiled == "" {
		return
	}
	// Any value different from a real search text forces a recompile.
	e.compiled = "\x00"
}

// Pattern returns the active pattern, or nil if no search is active.
func (e *Engine) Pattern() *Pattern {
	return e.pattern
}

// Next returns the index of the first line after from that matches the active
// pattern, wrapping around to the top. from itself is checked last.
func (e *Engine) Next(lines []string, from int) (int, bool) {
	return e.scan(lines, from, 1)
}

// Previous returns the index of the first line before from that matches the
// active pattern, wrapping around to the bottom. from itself is checked last.
func (e *Engine) Previous(lines []string, from int) (int, bool) {
	return e.scan(lines, from, -1)
}

func (e *Engine) scan(lines []string, from, step int) (int, bool) {
	n := len(lines)
	if e.pattern == nil || n == 0 {
		return 0, false
	}
	from = ((from % n) + n) % n
	for i := 1; i <= n; i++ {
		idx := ((from+step*i)%n + n) % n
		if e.pattern.Matches(lines[idx]) {
			return idx, true
		}
	}
	return 0, false
}
