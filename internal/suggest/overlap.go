package suggest

import "unicode/utf8"

// Overlap returns the byte length of the longest prefix of suggestion
// that case-insensitively equals a suffix of input. The length is
// measured on suggestion, so accepting it should append suggestion[k:]
// and already-typed characters are never duplicated.
func Overlap(input, suggestion string) int {
	for i := 0; i < len(input); {
		if n, ok := foldPrefixLen(suggestion, input[i:]); ok {
			return n
		}
		_, size := utf8.DecodeRuneInString(input[i:])
		i += size
	}
	return 0
}
