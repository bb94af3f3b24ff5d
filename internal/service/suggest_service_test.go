package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typeq/typeq/internal/config"
	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
)

type fakeAI struct {
	embed      []float32
	embedErr   error
	embedCalls int
	genText    string
	genErr     error
	genCalls   int
}

func (f *fakeAI) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embed, nil
}

func (f *fakeAI) Complete(ctx context.Context, input string, contextChunks []string) (string, error) {
	f.genCalls++
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.genText, nil
}

type fakeChunkSearch struct {
	hits        []model.ScoredChunk
	searchErr   error
	searchCalls int
}

func (f *fakeChunkSearch) Insert(ctx context.Context, chunk *model.Chunk) error { return nil }

func (f *fakeChunkSearch) ReplaceDocument(ctx context.Context, filename string, chunks []*model.Chunk) error {
	return nil
}

func (f *fakeChunkSearch) DeleteByFilename(ctx context.Context, filename string) (int64, error) {
	return 0, nil
}

func (f *fakeChunkSearch) Search(ctx context.Context, embedding []float32, threshold float32, limit int, literal string, literalWeight float32) ([]model.ScoredChunk, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeChunkSearch) ListByFilename(ctx context.Context, filename string) ([]model.Chunk, error) {
	return nil, nil
}

func (f *fakeChunkSearch) CountByFilename(ctx context.Context, filename string) (int, error) {
	return 0, nil
}

func (f *fakeChunkSearch) ListDocumentStats(ctx context.Context) ([]model.DocumentStat, error) {
	return nil, nil
}

func testSuggestConfig() config.SuggestConfig {
	return config.SuggestConfig{
		Threshold:          0.2,
		Count:              10,
		LiteralWeight:      0.5,
		Ranking:            "corpus-first",
		MaxSuggestions:     5,
		ContextChunks:      3,
		CacheSize:          16,
		CacheTTLSeconds:    60,
		DuplicateThreshold: 0.95,
	}
}

func literalHit(content string, similarity float32) model.ScoredChunk {
	return model.ScoredChunk{
		Chunk:      model.Chunk{Content: content},
		Similarity: similarity,
		Literal:    true,
	}
}

func TestSuggestSuppressedInput(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	resp, err := svc.Suggest(context.Background(), SuggestRequest{Text: "all done."})
	require.NoError(t, err)
	require.Empty(t, resp.Suggestions)
	require.Zero(t, ai.embedCalls)
	require.Zero(t, chunks.searchCalls)
}

func TestSuggestGeneratedFallbackOnEmptyCorpus(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}, genText: "brown fox jumps"}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	resp, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the quick "})
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	require.Equal(t, model.SourceGenerated, resp.Suggestions[0].Source)
	require.Equal(t, model.KindPhrase, resp.Suggestions[0].Kind)
	require.Equal(t, "brown fox jumps", resp.Suggestions[0].Text)
}

func TestSuggestStrongLiteralSkipsGenerator(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}, genText: "should not be used"}
	chunks := &fakeChunkSearch{hits: []model.ScoredChunk{
		literalHit("over the lazy dog runs", 0.9),
		literalHit("over the last hill lies", 0.8),
	}}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	resp, err := svc.Suggest(context.Background(), SuggestRequest{Text: "jumps over the la"})
	require.NoError(t, err)
	require.Zero(t, ai.genCalls)
	require.Len(t, resp.Suggestions, 2)
	for _, s := range resp.Suggestions {
		require.Equal(t, model.SourceCorpusLiteral, s.Source)
	}
	require.Equal(t, "zy dog runs", resp.Suggestions[0].Text)
}

func TestSuggestRetrievalErrorHardFails(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}}
	chunks := &fakeChunkSearch{searchErr: errors.New("connection refused")}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	_, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the quick "})
	require.Error(t, err)
	require.ErrorIs(t, err, appErr.ErrRetrieval)
}

func TestSuggestDegradesToGeneratorOnEmbedFailure(t *testing.T) {
	ai := &fakeAI{embedErr: errors.New("embedder down"), genText: "keeps typing"}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	resp, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the user "})
	require.NoError(t, err)
	require.Zero(t, chunks.searchCalls)
	require.Len(t, resp.Suggestions, 1)
	require.Equal(t, model.SourceGenerated, resp.Suggestions[0].Source)
}

func TestSuggestFailsWhenNoSourceAvailable(t *testing.T) {
	ai := &fakeAI{embedErr: errors.New("embedder down"), genErr: errors.New("generator down")}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	_, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the user "})
	require.Error(t, err)
}

func TestSuggestStaleSeqRejected(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}, genText: "something"}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	_, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the quick ", SessionID: "s1", Seq: 5})
	require.NoError(t, err)

	_, err = svc.Suggest(context.Background(), SuggestRequest{Text: "the qui", SessionID: "s1", Seq: 3})
	require.ErrorIs(t, err, appErr.ErrStale)
}

func TestSuggestServesRepeatsFromCache(t *testing.T) {
	ai := &fakeAI{embed: []float32{0.1}, genText: "brown fox"}
	chunks := &fakeChunkSearch{}
	svc := NewSuggestService(ai, chunks, testSuggestConfig())

	_, err := svc.Suggest(context.Background(), SuggestRequest{Text: "the quick "})
	require.NoError(t, err)
	_, err = svc.Suggest(context.Background(), SuggestRequest{Text: "the quick "})
	require.NoError(t, err)
	require.Equal(t, 1, ai.embedCalls)
	require.Equal(t, 1, chunks.searchCalls)
}

func TestSuggestRejectsBlankInput(t *testing.T) {
	svc := NewSuggestService(&fakeAI{}, &fakeChunkSearch{}, testSuggestConfig())
	_, err := svc.Suggest(context.Background(), SuggestRequest{Text: "   "})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
