// Package keymap translates bubbletea key messages into the engine's
// backend-neutral key events. Only the non-printable keys are translated here;
// printable characters are passed through and interpreted by the view.
package keymap

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/ratch/internal/watch"
)

// KeyMap holds the key bindings. The bindings from Interrupt to Escape are
// translated; the printable ones after them are interpreted by the view and
// only carry help text.
type KeyMap struct {
	Interrupt key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Enter     key.Binding
	Backspace key.Binding
	Escape    key.Binding

	Search key.Binding
	Next   key.Binding
	Yank   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("k / up", "scroll up one line")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("j / down", "scroll down one line")),
		PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up one page")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("space / pgdn", "scroll down one page")),
		Home:      key.NewBinding(key.WithKeys("home"), key.WithHelp("g / home", "go to top")),
		End:       key.NewBinding(key.WithKeys("end"), key.WithHelp("G / end", "go to bottom")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "commit search")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete")),
		Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),

		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search (enter keeps it, esc cancels)")),
		Next:   key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n / N", "next / previous matching line")),
		Yank:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy output to clipboard")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle this help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / ctrl+c", "quit")),
	}
}

// Translate converts a key message into engine key events. A message can
// carry several runes when text is pasted. Unbound keys and keys with the alt
// modifier yield nothing.
func (k KeyMap) Translate(msg tea.KeyMsg) []watch.Key {
	bindings := []struct {
		binding key.Binding
		key     watch.KeyType
	}{
		{k.Interrupt, watch.KeyCtrlC},
		{k.Up, watch.KeyUp},
		{k.Down, watch.KeyDown},
		{k.PageUp, watch.KeyPgUp},
		{k.PageDown, watch.KeyPgDown},
		{k.Home, watch.KeyHome},
		{k.End, watch.KeyEnd},
		{k.Enter, watch.KeyEnter},
		{k.Backspace, watch.KeyBackspace},
		{k.Escape, watch.KeyEscape},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return []watch.Key{{Type: b.key}}
		}
	}

	if msg.Alt {
		return nil
	}
	switch msg.Type {
	case tea.KeySpace:
		return []watch.Key{watch.RuneKey(' ')}
	case tea.KeyRunes:
		keys := make([]watch.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, watch.RuneKey(r))
		}
		return keys
	}
	return nil
}

// FullHelp returns the bindings listed in the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp, k.Home, k.End},
		{k.Search, k.Next, k.Escape},
		{k.Yank, k.Help, k.Quit},
	}
}

// HelpLines formats FullHelp as the text of the help overlay. Disabled
// bindings are left out.
func (k KeyMap) HelpLines() []string {
	lines := []string{"ratch key bindings"}
	for _, group := range k.FullHelp() {
		lines = append(lines, "")
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-14s  %s", h.Key, h.Desc))
		}
	}
	return lines
}
