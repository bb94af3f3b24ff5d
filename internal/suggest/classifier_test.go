package suggest

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		mode       Mode
		incomplete string
	}{
		{name: "empty", input: "", mode: ModeSuppressed},
		{name: "single char", input: "h", mode: ModeSuppressed},
		{name: "sentence closed", input: "hello world.", mode: ModeSuppressed},
		{name: "sentence closed with trailing space", input: "hello world. ", mode: ModeSuppressed},
		{name: "clause closed", input: "hello world,", mode: ModeSuppressed},
		{name: "question closed", input: "really?", mode: ModeSuppressed},
		{name: "trailing space", input: "hello ", mode: ModePhrase},
		{name: "mid word", input: "hello wor", mode: ModeWord, incomplete: "wor"},
		{name: "single complete word no space", input: "hello", mode: ModeWord, incomplete: "hello"},
		{name: "only spaces", input: "   ", mode: ModeSuppressed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Classify(tt.input)
			if q.Mode != tt.mode {
				t.Errorf("Classify(%q).Mode = %q, want %q", tt.input, q.Mode, tt.mode)
			}
			if q.IncompleteWord != tt.incomplete {
				t.Errorf("Classify(%q).IncompleteWord = %q, want %q", tt.input, q.IncompleteWord, tt.incomplete)
			}
		})
	}
}

func TestLiteralHint(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "word mode uses incomplete word", input: "the quick bro", want: "bro"},
		{name: "phrase mode uses last completed word", input: "the quick ", want: "quick"},
		{name: "suppressed has no hint", input: "done.", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input).LiteralHint(); got != tt.want {
				t.Errorf("LiteralHint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
