package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/ratch/internal/tui/keymap"
	"github.com/Iron-Ham/ratch/internal/watch"
)

// Model is the bubbletea model. It owns no watch state: input is forwarded
// to the main loop through the Terminal and the last frame it sent is shown.
type Model struct {
	term  *Terminal
	keys  keymap.KeyMap
	lines []string
}

// NewModel creates a model that forwards input to term.
func NewModel(term *Terminal) Model {
	return Model{term: term, keys: keymap.DefaultKeyMap()}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		for _, k := range m.keys.Translate(msg) {
			m.term.push(k)
		}
	case tea.WindowSizeMsg:
		m.term.resize(watch.Viewport{Width: msg.Width, Height: msg.Height})
	case frameMsg:
		m.lines = msg
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return strings.Join(m.lines, "\n")
}
