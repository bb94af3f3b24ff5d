package suggest

import (
	"strings"

	"github.com/typeq/typeq/internal/model"
)

// MaxSuggestions caps a single response.
const MaxSuggestions = 5

// Ranking decides whether corpus-derived or generated candidates come
// first in the merged list. The source order within each group is
// preserved either way.
type Ranking string

const (
	RankCorpusFirst    Ranking = "corpus-first"
	RankGeneratedFirst Ranking = "generated-first"
)

// Merge combines extractor and generator candidates into the final
// list: empty texts dropped, case-sensitive exact-text dedup keeping
// the first occurrence, capped at limit (MaxSuggestions when limit
// is out of range).
func Merge(corpus []model.Suggestion, generated []model.Suggestion, ranking Ranking, limit int) []model.Suggestion {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}
	ordered := make([]model.Suggestion, 0, len(corpus)+len(generated))
	if ranking == RankGeneratedFirst {
		ordered = append(ordered, generated...)
		ordered = append(ordered, corpus...)
	} else {
		ordered = append(ordered, corpus...)
		ordered = append(ordered, generated...)
	}
	seen := make(map[string]struct{}, len(ordered))
	out := make([]model.Suggestion, 0, limit)
	for _, s := range ordered {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}
