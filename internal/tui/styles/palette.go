// Package styles holds the color palettes of ratch and the lipgloss theme that
// paints frames for the bubbletea backend.
package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple accents, amber matches
	ThemeMonokai ThemeName = "monokai" // Classic Monokai editor colors
	ThemeDracula ThemeName = "dracula" // Dracula theme colors
	ThemeNord    ThemeName = "nord"    // Nord theme - cool blue-gray
	ThemeGruvbox ThemeName = "gruvbox" // Gruvbox retro groove
	ThemeNone    ThemeName = "none"    // No colors; matches are reversed
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeMonokai),
		string(ThemeDracula),
		string(ThemeNord),
		string(ThemeGruvbox),
		string(ThemeNone),
	}
}

// IsValidTheme checks if a theme name is a built-in theme.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the colors of a theme. Empty colors mean the terminal
// default.
type ColorPalette struct {
	// Prompt is the status line prompt and search text.
	Prompt lipgloss.Color
	// Message is the transient status message.
	Message lipgloss.Color
	// Info is the right-hand refresh summary.
	Info lipgloss.Color
	// Text is captured output.
	Text lipgloss.Color

	// Search highlight colors
	SearchMatchBg lipgloss.Color
	SearchMatchFg lipgloss.Color
}

// PaletteFor returns the palette for a theme name, falling back to the
// default palette for unknown names.
func PaletteFor(name string) *ColorPalette {
	switch ThemeName(name) {
	case ThemeMonokai:
		return MonokaiPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	case ThemeGruvbox:
		return GruvboxPalette()
	case ThemeNone:
		return &ColorPalette{}
	default:
		return DefaultPalette()
	}
}

// DefaultPalette returns the default dark palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Prompt:        lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Message:       lipgloss.Color("#F87171"), // Red (red-400)
		Info:          lipgloss.Color("#9CA3AF"), // Gray
		SearchMatchBg: lipgloss.Color("#854D0E"), // Dark yellow
		SearchMatchFg: lipgloss.Color("#FEF3C7"), // Light cream
	}
}

// MonokaiPalette returns the classic Monokai editor theme palette.
func MonokaiPalette() *ColorPalette {
	return &ColorPalette{
		Prompt:        lipgloss.Color("#F92672"), // Monokai pink/magenta
		Message:       lipgloss.Color("#E6DB74"), // Monokai yellow
		Info:          lipgloss.Color("#75715E"), // Monokai comment gray
		Text:          lipgloss.Color("#F8F8F2"), // Monokai foreground
		SearchMatchBg: lipgloss.Color("#49483E"), // Selection
		SearchMatchFg: lipgloss.Color("#E6DB74"), // Yellow
	}
}

// DraculaPalette returns the Dracula theme palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Prompt:        lipgloss.Color("#BD93F9"), // Dracula purple
		Message:       lipgloss.Color("#FF5555"), // Dracula red
		Info:          lipgloss.Color("#6272A4"), // Dracula comment
		Text:          lipgloss.Color("#F8F8F2"), // Dracula foreground
		SearchMatchBg: lipgloss.Color("#44475A"), // Selection
		SearchMatchFg: lipgloss.Color("#F1FA8C"), // Yellow
	}
}

// NordPalette returns the Nord theme palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Prompt:        lipgloss.Color("#88C0D0"), // Nord frost (cyan)
		Message:       lipgloss.Color("#BF616A"), // Nord aurora red
		Info:          lipgloss.Color("#4C566A"), // Nord polar night 3
		Text:          lipgloss.Color("#ECEFF4"), // Nord snow storm 2
		SearchMatchBg: lipgloss.Color("#3B4252"), // Polar night 1
		SearchMatchFg: lipgloss.Color("#EBCB8B"), // Yellow
	}
}

// GruvboxPalette returns the Gruvbox dark palette.
func GruvboxPalette() *ColorPalette {
	return &ColorPalette{
		Prompt:        lipgloss.Color("#83A598"), // Gruvbox aqua
		Message:       lipgloss.Color("#FB4934"), // Gruvbox red
		Info:          lipgloss.Color("#928374"), // Gruvbox gray
		Text:          lipgloss.Color("#EBDBB2"), // Gruvbox fg
		SearchMatchBg: lipgloss.Color("#3C3836"), // bg1
		SearchMatchFg: lipgloss.Color("#FABD2F"), // Yellow
	}
}
