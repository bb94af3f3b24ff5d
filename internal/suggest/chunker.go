package suggest

import (
	"strings"
	"unicode"

	"github.com/typeq/typeq/internal/model"
)

const (
	minWordLen         = 2
	minSentenceLen     = 3
	smartMinWordLen    = 4
	smartMinBigramLen  = 8
	smartMinTrigramLen = 12

	// Defaults for the length-bounded overlap chunker used on long
	// free-form documents.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into indexable units under the given strategy.
// The result preserves first-seen order, contains no duplicates and no
// empty entries. Empty input yields an empty list; callers must treat
// that as a processing failure.
func Chunk(text string, strategy model.ChunkStrategy) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	switch strategy {
	case model.StrategyWord:
		return dedupe(chunkWords(text))
	case model.StrategySentence:
		return dedupe(chunkSentences(text))
	default:
		return dedupe(chunkSmart(text))
	}
}

func chunkWords(text string) []string {
	var out []string
	for _, tok := range tokenize(text) {
		if len(tok) < minWordLen || IsCommonWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func chunkSentences(text string) []string {
	var out []string
	for _, s := range SplitSentences(text) {
		if len(s) < minSentenceLen {
			continue
		}
		out = append(out, s)
	}
	return out
}

// chunkSmart extracts overlapping multi-granularity units: whole
// sentences, significant single words, and 2/3-word phrases. Retrieval
// can then match at word, phrase or sentence level.
func chunkSmart(text string) []string {
	var out []string
	for _, sentence := range SplitSentences(text) {
		if len(sentence) >= minSentenceLen {
			out = append(out, sentence)
		}
		words := tokenize(sentence)
		for _, w := range words {
			if len(w) >= smartMinWordLen && !IsCommonWord(w) {
				out = append(out, w)
			}
		}
		for i := 0; i+1 < len(words); i++ {
			bigram := words[i] + " " + words[i+1]
			if len(bigram) >= smartMinBigramLen {
				out = append(out, bigram)
			}
			if i+2 < len(words) {
				trigram := bigram + " " + words[i+2]
				if len(trigram) >= smartMinTrigramLen {
					out = append(out, trigram)
				}
			}
		}
	}
	return out
}

// ChunkDocument is the length-bounded overlap chunker for generic long
// documents. Windows are built on sentence boundaries up to roughly
// size characters, with the tail of each window repeated at the head of
// the next one. Input shorter than size comes back as a single chunk.
func ChunkDocument(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	if len(text) <= size {
		return []string{text}
	}

	sentences := SplitSentences(text)
	var out []string
	var window []string
	windowLen := 0
	// fresh marks windows holding at least one sentence no emitted
	// window covers yet; a window of pure carried-over tail is not
	// re-emitted on its own.
	fresh := false
	flush := func() {
		if len(window) == 0 {
			return
		}
		out = append(out, strings.Join(window, " "))
		// Carry trailing sentences into the next window for context.
		kept := 0
		var tail []string
		for i := len(window) - 1; i >= 0; i-- {
			if kept+len(window[i]) > overlap {
				break
			}
			kept += len(window[i]) + 1
			tail = append([]string{window[i]}, tail...)
		}
		window = tail
		windowLen = kept
		fresh = false
	}
	for _, s := range sentences {
		if len(s) > size {
			flush()
			for len(s) > size {
				out = append(out, strings.TrimSpace(s[:size]))
				s = s[size-overlap:]
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
		}
		if windowLen+len(s) > size && windowLen > 0 {
			flush()
		}
		window = append(window, s)
		windowLen += len(s) + 1
		fresh = true
	}
	if fresh {
		out = append(out, strings.Join(window, " "))
	}
	return dedupe(out)
}

// SplitSentences cuts text on sentence-terminal punctuation. Elided
// terminators ("...", "?!") collapse into a single boundary. The
// punctuation itself is not kept.
func SplitSentences(text string) []string {
	var out []string
	var sb strings.Builder
	flush := func() {
		s := strings.TrimSpace(sb.String())
		sb.Reset()
		if s != "" {
			out = append(out, s)
		}
	}
	terminal := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			terminal = true
		case '\n':
			flush()
			terminal = false
		default:
			if terminal {
				flush()
				terminal = false
			}
			sb.WriteRune(r)
		}
	}
	flush()
	return out
}

// TypeOf classifies an indexed unit for chunk metadata.
func TypeOf(chunk string) model.ChunkType {
	words := strings.Fields(chunk)
	switch {
	case len(words) <= 1:
		return model.ChunkTypeWord
	case len(words) <= 3:
		return model.ChunkTypePhrase
	default:
		return model.ChunkTypeSentence
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
