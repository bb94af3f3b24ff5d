package suggest

import "strings"

// Mode is the classification of the user's current input. It is a pure
// function of the latest input string, recomputed on every change.
type Mode string

const (
	// ModeSuppressed means no suggestion applies: the input is too
	// short or the user just closed a sentence or clause.
	ModeSuppressed Mode = "suppressed"
	// ModeWord means the user is mid-word; the trailing token is the
	// incomplete word.
	ModeWord Mode = "word"
	// ModePhrase means the user just finished a word and a phrase
	// continuation applies.
	ModePhrase Mode = "phrase"
)

// Query is the ephemeral classified form of a raw input string.
type Query struct {
	Text           string
	Mode           Mode
	IncompleteWord string
}

// Classify decides whether word completion, phrase continuation, or no
// suggestion applies to the current input.
func Classify(input string) Query {
	q := Query{Text: input, Mode: ModeSuppressed}
	if len(input) < 2 {
		return q
	}
	trimmed := strings.TrimRight(input, " ")
	if trimmed == "" {
		return q
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', ',', ';', ':':
		return q
	}
	if strings.HasSuffix(input, " ") {
		q.Mode = ModePhrase
		return q
	}
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return q
	}
	last := fields[len(fields)-1]
	if last == "" {
		return q
	}
	q.Mode = ModeWord
	q.IncompleteWord = last
	return q
}

// LiteralHint returns the trailing literal the hybrid retriever should
// boost on: the incomplete word in word mode, the last completed word
// in phrase mode.
func (q Query) LiteralHint() string {
	if q.Mode == ModeWord {
		return q.IncompleteWord
	}
	if q.Mode == ModePhrase {
		fields := strings.Fields(q.Text)
		if len(fields) > 0 {
			return fields[len(fields)-1]
		}
	}
	return ""
}
