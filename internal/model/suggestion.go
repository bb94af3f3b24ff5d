package model

type SuggestionSource string

const (
	SourceCorpusLiteral SuggestionSource = "corpus-literal"
	SourceCorpusDerived SuggestionSource = "corpus-derived"
	SourceGenerated     SuggestionSource = "generated"
)

type SuggestionKind string

const (
	KindWord   SuggestionKind = "word"
	KindPhrase SuggestionKind = "phrase"
)

// Suggestion carries the continuation only, never the characters the
// user already typed. Similarity is meaningful for corpus sources only.
type Suggestion struct {
	Text       string           `json:"text"`
	Source     SuggestionSource `json:"source"`
	Similarity float32          `json:"similarity,omitempty"`
	Kind       SuggestionKind   `json:"kind"`
}
