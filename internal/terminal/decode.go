package terminal

import (
	"unicode/utf8"

	"github.com/Iron-Ham/ratch/internal/watch"
)

const esc = 0x1b

// Decoder turns raw terminal input into keys. Escape sequences are expected
// to arrive within a single read; a partial UTF-8 character at the end of a
// read is kept until the next one.
type Decoder struct {
	pending []byte
}

// Feed decodes p and returns the complete keys it contains.
func (d *Decoder) Feed(p []byte) []watch.Key {
	buf := p
	if len(d.pending) > 0 {
		buf = append(d.pending, p...)
		d.pending = nil
	}

	var keys []watch.Key
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b == esc:
			k, n, ok := decodeEscape(buf[i:])
			if ok {
				keys = append(keys, k)
			}
			i += n
		case b == 0x03:
			keys = append(keys, watch.Key{Type: watch.KeyCtrlC})
			i++
		case b == '\r' || b == '\n':
			keys = append(keys, watch.Key{Type: watch.KeyEnter})
			// A CR LF pair is a single Enter.
			if b == '\r' && i+1 < len(buf) && buf[i+1] == '\n' {
				i++
			}
			i++
		case b == 0x7f || b == 0x08:
			keys = append(keys, watch.Key{Type: watch.KeyBackspace})
			i++
		case b < 0x20:
			i++
		case b < utf8.RuneSelf:
			keys = append(keys, watch.RuneKey(rune(b)))
			i++
		default:
			if !utf8.FullRune(buf[i:]) {
				d.pending = append([]byte(nil), buf[i:]...)
				return keys
			}
			r, n := utf8.DecodeRune(buf[i:])
			if r != utf8.RuneError {
				keys = append(keys, watch.RuneKey(r))
			}
			i += n
		}
	}
	return keys
}

// decodeEscape decodes the sequence at the start of p, which begins with
// ESC. It returns the key, the number of bytes consumed and whether the
// sequence maps to a key at all.
func decodeEscape(p []byte) (watch.Key, int, bool) {
	if len(p) == 1 || p[1] == esc {
		return watch.Key{Type: watch.KeyEscape}, 1, true
	}
	switch p[1] {
	case '[':
		return decodeCSI(p)
	case 'O':
		if len(p) < 3 {
			return watch.Key{Type: watch.KeyEscape}, 1, true
		}
		k, ok := finalKey(p[2])
		return k, 3, ok
	default:
		// Alt-modified keys are not bound.
		_, n := utf8.DecodeRune(p[1:])
		return watch.Key{}, 1 + n, false
	}
}

// decodeCSI decodes ESC [ params intermediates final.
func decodeCSI(p []byte) (watch.Key, int, bool) {
	i := 2
	start := i
	for i < len(p) && p[i] >= 0x30 && p[i] <= 0x3f {
		i++
	}
	params := p[start:i]
	for i < len(p) && p[i] >= 0x20 && p[i] <= 0x2f {
		i++
	}
	if i >= len(p) || p[i] < 0x40 || p[i] > 0x7e {
		// Truncated sequence: drop what we have.
		return watch.Key{}, i, false
	}
	final := p[i]
	n := i + 1

	if final == '~' {
		k, ok := tildeKey(leadingParam(params))
		return k, n, ok
	}
	k, ok := finalKey(final)
	return k, n, ok
}

func finalKey(b byte) (watch.Key, bool) {
	switch b {
	case 'A':
		return watch.Key{Type: watch.KeyUp}, true
	case 'B':
		return watch.Key{Type: watch.KeyDown}, true
	case 'H':
		return watch.Key{Type: watch.KeyHome}, true
	case 'F':
		return watch.Key{Type: watch.KeyEnd}, true
	}
	return watch.Key{}, false
}

func tildeKey(param int) (watch.Key, bool) {
	switch param {
	case 1, 7:
		return watch.Key{Type: watch.KeyHome}, true
	case 4, 8:
		return watch.Key{Type: watch.KeyEnd}, true
	case 5:
		return watch.Key{Type: watch.KeyPgUp}, true
	case 6:
		return watch.Key{Type: watch.KeyPgDown}, true
	}
	return watch.Key{}, false
}

// leadingParam returns the first numeric parameter, or -1.
func leadingParam(params []byte) int {
	v := -1
	for _, b := range params {
		if b < '0' || b > '9' {
			break
		}
		if v < 0 {
			v = 0
		}
		v = v*10 + int(b-'0')
	}
	return v
}
