package terminal

import (
	"github.com/muesli/termenv"

	"github.com/Iron-Ham/ratch/internal/tui/styles"
)

// Theme paints frame parts with termenv styles. It implements watch.Theme.
type Theme struct {
	profile termenv.Profile
	palette *styles.ColorPalette
}

// NewTheme builds a Theme from a palette for the given color profile.
func NewTheme(p *styles.ColorPalette, profile termenv.Profile) *Theme {
	return &Theme{profile: profile, palette: p}
}

func (t *Theme) style(s string, fg string) termenv.Style {
	st := t.profile.String(s)
	if fg != "" {
		st = st.Foreground(t.profile.Color(fg))
	}
	return st
}

func (t *Theme) Text(s string) string {
	return t.style(s, string(t.palette.Text)).String()
}

func (t *Theme) Match(s string) string {
	st := t.style(s, string(t.palette.SearchMatchFg))
	if bg := t.palette.SearchMatchBg; bg != "" {
		st = st.Background(t.profile.Color(string(bg)))
	} else {
		st = st.Reverse()
	}
	return st.String()
}

func (t *Theme) Prompt(s string) string {
	return t.style(s, string(t.palette.Prompt)).Bold().String()
}

func (t *Theme) Message(s string) string {
	return t.style(s, string(t.palette.Message)).String()
}

func (t *Theme) Info(s string) string {
	return t.style(s, string(t.palette.Info)).String()
}
