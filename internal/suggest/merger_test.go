package suggest

import (
	"testing"

	"github.com/typeq/typeq/internal/model"
)

func sugg(text string, source model.SuggestionSource) model.Suggestion {
	return model.Suggestion{Text: text, Source: source, Kind: model.KindPhrase}
}

func TestMergeCorpusFirst(t *testing.T) {
	corpus := []model.Suggestion{
		sugg("alpha", model.SourceCorpusLiteral),
		sugg("beta", model.SourceCorpusDerived),
	}
	generated := []model.Suggestion{
		sugg("alpha", model.SourceGenerated),
		sugg("gamma", model.SourceGenerated),
	}
	got := Merge(corpus, generated, RankCorpusFirst, 5)
	if len(got) != 3 {
		t.Fatalf("merged %d suggestions, want 3", len(got))
	}
	if got[0].Text != "alpha" || got[0].Source != model.SourceCorpusLiteral {
		t.Errorf("first = %+v, want corpus alpha", got[0])
	}
	if got[1].Text != "beta" || got[2].Text != "gamma" {
		t.Errorf("order = %q, %q, want beta, gamma", got[1].Text, got[2].Text)
	}
}

func TestMergeGeneratedFirst(t *testing.T) {
	corpus := []model.Suggestion{sugg("alpha", model.SourceCorpusLiteral)}
	generated := []model.Suggestion{sugg("gamma", model.SourceGenerated)}
	got := Merge(corpus, generated, RankGeneratedFirst, 5)
	if len(got) != 2 || got[0].Source != model.SourceGenerated {
		t.Errorf("merged = %+v, want generated first", got)
	}
}

func TestMergeCapsAndDropsEmpties(t *testing.T) {
	var corpus []model.Suggestion
	for _, text := range []string{"a", "", "b", "c", "d", "e", "f"} {
		corpus = append(corpus, sugg(text, model.SourceCorpusDerived))
	}
	got := Merge(corpus, nil, RankCorpusFirst, 0)
	if len(got) != MaxSuggestions {
		t.Fatalf("merged %d suggestions, want %d", len(got), MaxSuggestions)
	}
	for _, s := range got {
		if s.Text == "" {
			t.Error("empty suggestion survived merge")
		}
	}
}
