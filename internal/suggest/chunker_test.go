package suggest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/typeq/typeq/internal/model"
)

func TestChunkWordStrategy(t *testing.T) {
	got := Chunk("The cat sat on the mat", model.StrategyWord)
	want := []string{"cat", "sat", "mat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk word = %v, want %v", got, want)
	}
}

func TestChunkWordStrategyDeduplicates(t *testing.T) {
	got := Chunk("cat cat cat", model.StrategyWord)
	want := []string{"cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk word = %v, want %v", got, want)
	}
}

func TestChunkSentenceStrategy(t *testing.T) {
	got := Chunk("Hello world. Hi! Ok", model.StrategySentence)
	want := []string{"Hello world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk sentence = %v, want %v", got, want)
	}
}

func TestChunkSmartStrategy(t *testing.T) {
	got := Chunk("The quick fox jumps", model.StrategySmart)
	want := []string{
		"The quick fox jumps",
		"quick",
		"jumps",
		"The quick",
		"The quick fox",
		"quick fox",
		"quick fox jumps",
		"fox jumps",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunk smart = %v, want %v", got, want)
	}
}

func TestChunkIsIdempotent(t *testing.T) {
	text := "The quick fox jumps. The quick fox jumps."
	first := Chunk(text, model.StrategySmart)
	second := Chunk(text, model.StrategySmart)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different chunk sets: %v vs %v", first, second)
	}
	seen := map[string]struct{}{}
	for _, c := range first {
		if c == "" {
			t.Error("empty chunk in result")
		}
		if _, ok := seen[c]; ok {
			t.Errorf("duplicate chunk %q", c)
		}
		seen[c] = struct{}{}
	}
}

func TestChunkEmptyInput(t *testing.T) {
	if got := Chunk("   ", model.StrategySmart); len(got) != 0 {
		t.Errorf("Chunk on blank input = %v, want empty", got)
	}
}

func TestChunkDocumentShortText(t *testing.T) {
	got := ChunkDocument("a short note", 1000, 200)
	want := []string{"a short note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkDocument = %v, want %v", got, want)
	}
}

func TestChunkDocumentOverlapWindows(t *testing.T) {
	got := ChunkDocument("alpha beta. gamma delta. epsilon zeta.", 20, 12)
	want := []string{
		"alpha beta",
		"alpha beta gamma delta",
		"gamma delta epsilon zeta",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkDocument = %v, want %v", got, want)
	}
}

func TestChunkDocumentKeepsShortTrailingSentence(t *testing.T) {
	// The first sentence is too long to carry into the next window, so
	// the trailing one arrives in an otherwise empty window shorter than
	// the overlap. It must still be emitted.
	text := strings.Repeat("y", 990) + ". short trailing sentence."
	got := ChunkDocument(text, 1000, 200)
	found := false
	for _, c := range got {
		if strings.Contains(c, "short trailing sentence") {
			found = true
		}
	}
	if !found {
		t.Errorf("trailing sentence missing from %d chunks", len(got))
	}
}

func TestChunkDocumentHardSplitsOversizeSentence(t *testing.T) {
	text := strings.Repeat("x", 250)
	got := ChunkDocument(text, 100, 20)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for _, c := range got {
		if len(c) > 100 {
			t.Errorf("chunk length %d exceeds size limit", len(c))
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Hello world... What?! Ok\nBye")
	want := []string{"Hello world", "What", "Ok", "Bye"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences = %v, want %v", got, want)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		chunk string
		want  model.ChunkType
	}{
		{"hello", model.ChunkTypeWord},
		{"hello there", model.ChunkTypePhrase},
		{"one two three", model.ChunkTypePhrase},
		{"one two three four five", model.ChunkTypeSentence},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.chunk); got != tt.want {
			t.Errorf("TypeOf(%q) = %q, want %q", tt.chunk, got, tt.want)
		}
	}
}
