package watch

import "fmt"

// KeyType identifies a backend-neutral input event.
type KeyType int

const (
	// KeyRune is a printable character; the character is in Key.Rune.
	KeyRune KeyType = iota
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyPgUp
	KeyPgDown
	KeyHome
	KeyEnd
	KeyCtrlC
)

// Key is a single input event from the terminal.
type Key struct {
	Type KeyType
	Rune rune
}

// RuneKey returns the event for a printable character.
func RuneKey(r rune) Key {
	return Key{Type: KeyRune, Rune: r}
}

// String returns a readable name for the key, used in debug logs.
func (k Key) String() string {
	switch k.Type {
	case KeyRune:
		if k.Rune == ' ' {
			return "space"
		}
		return string(k.Rune)
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	case KeyEscape:
		return "esc"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyPgUp:
		return "pgup"
	case KeyPgDown:
		return "pgdown"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyCtrlC:
		return "ctrl+c"
	default:
		return fmt.Sprintf("key(%d)", int(k.Type))
	}
}
