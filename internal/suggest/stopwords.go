package suggest

import "strings"

// stopwords is a static gazetteer of low-value words that are not worth
// indexing on their own. Sentence and phrase chunks keep them; only
// single-word chunks are filtered.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a an and are as at be but by for from had has have he her his i if
		in into is it its me my no not of on or our she so that the their
		them then there these they this to was we were what when where
		which who will with would you your
		about after all also am any been before being can could did do
		does down each few get got him how just like more most now only
		other out over own same some such than too under up very
	`) {
		stopwords[w] = struct{}{}
	}
}

// IsCommonWord reports whether the word is in the gazetteer.
// Matching is case-insensitive.
func IsCommonWord(word string) bool {
	_, ok := stopwords[strings.ToLower(strings.TrimSpace(word))]
	return ok
}
