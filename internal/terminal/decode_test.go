package terminal

import (
	"reflect"
	"testing"

	"github.com/Iron-Ham/ratch/internal/watch"
)

func TestDecoder_Feed(t *testing.T) {
	up := watch.Key{Type: watch.KeyUp}
	down := watch.Key{Type: watch.KeyDown}

	tests := []struct {
		name string
		in   string
		want []watch.Key
	}{
		{"printable", "jk", []watch.Key{watch.RuneKey('j'), watch.RuneKey('k')}},
		{"space", " ", []watch.Key{watch.RuneKey(' ')}},
		{"csi arrows", "\x1b[A\x1b[B", []watch.Key{up, down}},
		{"ss3 arrows", "\x1bOA\x1bOB", []watch.Key{up, down}},
		{"modified arrow", "\x1b[1;5A", []watch.Key{up}},
		{"page keys", "\x1b[5~\x1b[6~", []watch.Key{{Type: watch.KeyPgUp}, {Type: watch.KeyPgDown}}},
		{"home end csi", "\x1b[H\x1b[F", []watch.Key{{Type: watch.KeyHome}, {Type: watch.KeyEnd}}},
		{"home end tilde", "\x1b[1~\x1b[4~\x1b[7~\x1b[8~", []watch.Key{
			{Type: watch.KeyHome}, {Type: watch.KeyEnd}, {Type: watch.KeyHome}, {Type: watch.KeyEnd},
		}},
		{"home end ss3", "\x1bOH\x1bOF", []watch.Key{{Type: watch.KeyHome}, {Type: watch.KeyEnd}}},
		{"enter", "\r", []watch.Key{{Type: watch.KeyEnter}}},
		{"crlf is one enter", "\r\n", []watch.Key{{Type: watch.KeyEnter}}},
		{"newline", "\n", []watch.Key{{Type: watch.KeyEnter}}},
		{"backspace", "\x7f\x08", []watch.Key{{Type: watch.KeyBackspace}, {Type: watch.KeyBackspace}}},
		{"ctrl c", "\x03", []watch.Key{{Type: watch.KeyCtrlC}}},
		{"lone escape", "\x1b", []watch.Key{{Type: watch.KeyEscape}}},
		{"double escape", "\x1b\x1b", []watch.Key{{Type: watch.KeyEscape}, {Type: watch.KeyEscape}}},
		{"unknown csi skipped", "\x1b[3~x\x1b[C", []watch.Key{watch.RuneKey('x')}},
		{"alt key ignored", "\x1bjq", []watch.Key{watch.RuneKey('q')}},
		{"other controls ignored", "\t\x01a", []watch.Key{watch.RuneKey('a')}},
		{"multibyte", "é日", []watch.Key{watch.RuneKey('é'), watch.RuneKey('日')}},
		{"invalid utf8 skipped", "\xffa", []watch.Key{watch.RuneKey('a')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			got := d.Feed([]byte(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Feed(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecoder_SplitRune(t *testing.T) {
	var d Decoder
	b := []byte("日")

	if got := d.Feed(b[:1]); len(got) != 0 {
		t.Fatalf("partial rune produced %v", got)
	}
	if got := d.Feed(b[1:2]); len(got) != 0 {
		t.Fatalf("partial rune produced %v", got)
	}
	got := d.Feed(append(b[2:], 'x'))
	want := []watch.Key{watch.RuneKey('日'), watch.RuneKey('x')}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Feed = %v, want %v", got, want)
	}
}

func TestLeadingParam(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", -1},
		{"5", 5},
		{"15;2", 15},
		{";3", -1},
	}
	for _, tt := range tests {
		if got := leadingParam([]byte(tt.in)); got != tt.want {
			t.Errorf("leadingParam(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
