package suggest

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		content string
		want    string
	}{
		{
			name:    "mid word continuation",
			input:   "the quick brown fox jumps over the la",
			content: "over the lazy dog runs free",
			want:    "zy dog runs free",
		},
		{
			name:    "truncates at sentence boundary",
			input:   "once upon",
			content: "Say once upon a time. The end",
			want:    "a time",
		},
		{
			name:    "strips leading punctuation run",
			input:   "end of line",
			content: "line, then more text",
			want:    "then more text",
		},
		{
			name:    "no occurrence",
			input:   "hello world",
			content: "completely unrelated content",
			want:    "",
		},
		{
			name:    "rejects pure repeat of input",
			input:   "hello world",
			content: "say hello world",
			want:    "",
		},
		{
			name:    "empty input",
			input:   "   ",
			content: "anything",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.input, tt.content); got != tt.want {
				t.Errorf("Extract(%q, %q) = %q, want %q", tt.input, tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractUnicodeCaseFolding(t *testing.T) {
	// Ⱥ grows from 2 to 3 bytes when lowered, İ shrinks from 2 to 1;
	// matching must stay aligned with the original bytes either way.
	tests := []struct {
		name    string
		input   string
		content string
		want    string
	}{
		{
			name:    "match after width growing runes",
			input:   "say test",
			content: "ȺȺȺȺ say test passes now",
			want:    "passes now",
		},
		{
			name:    "match after width shrinking runes",
			input:   "say test",
			content: "İİİİ say test passes now",
			want:    "passes now",
		},
		{
			name:    "no continuation past end of chunk",
			input:   "say test",
			content: "ȺȺȺȺ test",
			want:    "",
		},
		{
			name:    "guarded last word not fooled by shrinking runes",
			input:   "say test",
			content: "İİİİ test",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.input, tt.content); got != tt.want {
				t.Errorf("Extract(%q, %q) = %q, want %q", tt.input, tt.content, got, tt.want)
			}
		})
	}
}

func TestExtractCapsContinuationLength(t *testing.T) {
	long := "start here " + strings.TrimSpace(strings.Repeat("word ", 30))
	got := Extract("start here", long)
	if got == "" {
		t.Fatal("expected a continuation")
	}
	if n := len(strings.Fields(got)); n != maxContinuationWords {
		t.Errorf("continuation has %d words, want %d", n, maxContinuationWords)
	}
}

func TestAfterGuardedMatch(t *testing.T) {
	// The first "mat" occurs inside "doormat"; the guard requires the
	// preceding word to be "the", which only holds for the second one.
	got := afterGuardedMatch("doormat is here the mat lies flat", "the", "mat")
	if got != " lies flat" {
		t.Errorf("afterGuardedMatch = %q, want %q", got, " lies flat")
	}
	if got := afterGuardedMatch("doormat is here", "the", "mat"); got != "" {
		t.Errorf("afterGuardedMatch without guard word = %q, want empty", got)
	}
}

func TestAfterGuardedMatchUnicodePrefix(t *testing.T) {
	got := afterGuardedMatch("Ⱥdoormat here the MAT lies flat", "the", "mat")
	if got != " lies flat" {
		t.Errorf("afterGuardedMatch = %q, want %q", got, " lies flat")
	}
}
