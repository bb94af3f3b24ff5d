package suggest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxContinuationWords bounds how much of a chunk a single suggestion
// may carry.
const maxContinuationWords = 15

// Extract derives a literal continuation from a chunk's content
// relative to the user's input. Strategies are tried longest-context
// first; the first non-empty result wins. An empty return means no
// usable continuation, never a fabricated guess.
func Extract(input, content string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || strings.TrimSpace(content) == "" {
		return ""
	}
	words := strings.Fields(trimmed)

	// 1. Match the last 4/3/2/1 words of the input inside the chunk.
	for n := 4; n >= 1; n-- {
		if n > len(words) {
			continue
		}
		needle := strings.Join(words[len(words)-n:], " ")
		if cont := afterMatch(content, needle); cont != "" {
			if c := cleanContinuation(trimmed, cont); c != "" {
				return c
			}
		}
	}

	// 2. Match the entire trimmed input.
	if cont := afterMatch(content, trimmed); cont != "" {
		if c := cleanContinuation(trimmed, cont); c != "" {
			return c
		}
	}

	// 3. Last-word match, guarded by the previous word appearing right
	// before it in the chunk. Without the guard a common trailing word
	// would complete from unrelated contexts.
	if len(words) >= 2 {
		if cont := afterGuardedMatch(content, words[len(words)-2], words[len(words)-1]); cont != "" {
			if c := cleanContinuation(trimmed, cont); c != "" {
				return c
			}
		}
	}
	return ""
}

// afterMatch returns the chunk text following the first
// case-insensitive occurrence of needle, or "".
func afterMatch(content, needle string) string {
	_, end := foldIndex(content, needle)
	if end < 0 {
		return ""
	}
	return content[end:]
}

func afterGuardedMatch(content, prev, last string) string {
	for start := 0; start < len(content); {
		i, end := foldIndex(content[start:], last)
		if i < 0 {
			return ""
		}
		i += start
		end += start
		before := strings.Fields(content[:i])
		if len(before) > 0 && strings.EqualFold(strings.Trim(before[len(before)-1], ".,!?;:"), prev) {
			return content[end:]
		}
		start = end
	}
	return ""
}

// foldIndex reports the byte range [start, end) of the first
// case-insensitive occurrence of needle in s, or (-1, -1). Offsets are
// positions in s itself, never in a lowered copy, because case folding
// can change a rune's encoded length (Ⱥ/ⱥ, İ/i).
func foldIndex(s, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	for start := 0; start < len(s); {
		if n, ok := foldPrefixLen(s[start:], needle); ok {
			return start, start + n
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	return -1, -1
}

// foldPrefixLen reports the byte length of the prefix of s matching
// needle rune by rune under simple case folding.
func foldPrefixLen(s, needle string) (int, bool) {
	i := 0
	for _, nr := range needle {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return 0, false
		}
		if r != nr && unicode.ToLower(r) != unicode.ToLower(nr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// cleanContinuation strips a single leading punctuation/space run,
// truncates to the first sentence boundary or the word cap, and
// rejects continuations that merely repeat the user's input.
func cleanContinuation(input, cont string) string {
	cont = strings.TrimLeftFunc(cont, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if cont == "" {
		return ""
	}
	if i := strings.IndexAny(cont, ".!?\n"); i >= 0 {
		cont = cont[:i]
	}
	fields := strings.Fields(cont)
	if len(fields) > maxContinuationWords {
		fields = fields[:maxContinuationWords]
	}
	cont = strings.Join(fields, " ")
	cont = strings.TrimSpace(cont)
	if cont == "" {
		return ""
	}
	lower := strings.ToLower(cont)
	lowerInput := strings.ToLower(input)
	if lower == lowerInput || strings.HasPrefix(lowerInput, lower) {
		return ""
	}
	return cont
}
