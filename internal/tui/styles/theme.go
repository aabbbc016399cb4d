package styles

import "github.com/charmbracelet/lipgloss"

// Theme paints frame parts with lipgloss styles built from a palette.
// It implements watch.Theme.
type Theme struct {
	text    lipgloss.Style
	match   lipgloss.Style
	prompt  lipgloss.Style
	message lipgloss.Style
	info    lipgloss.Style
}

// NewTheme builds a Theme from a palette.
func NewTheme(p *ColorPalette) *Theme {
	t := &Theme{
		text:    withForeground(lipgloss.NewStyle(), p.Text),
		match:   withForeground(lipgloss.NewStyle(), p.SearchMatchFg),
		prompt:  withForeground(lipgloss.NewStyle().Bold(true), p.Prompt),
		message: withForeground(lipgloss.NewStyle(), p.Message),
		info:    withForeground(lipgloss.NewStyle(), p.Info),
	}
	if p.SearchMatchBg != "" {
		t.match = t.match.Background(p.SearchMatchBg)
	} else {
		t.match = t.match.Reverse(true)
	}
	return t
}

// ForName builds the Theme for a theme name.
func ForName(name string) *Theme {
	return NewTheme(PaletteFor(name))
}

func withForeground(s lipgloss.Style, c lipgloss.Color) lipgloss.Style {
	if c == "" {
		return s
	}
	return s.Foreground(c)
}

func (t *Theme) Text(s string) string    { return t.text.Render(s) }
func (t *Theme) Match(s string) string   { return t.match.Render(s) }
func (t *Theme) Prompt(s string) string  { return t.prompt.Render(s) }
func (t *Theme) Message(s string) string { return t.message.Render(s) }
func (t *Theme) Info(s string) string    { return t.info.Render(s) }
