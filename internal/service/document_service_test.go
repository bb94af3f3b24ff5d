package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
)

func newDocumentFixture() (*DocumentService, *recordingChunkStore, *fakeDocStore, *recordingPendingStore) {
	chunks := &recordingChunkStore{}
	docs := &fakeDocStore{docs: map[string]*model.Document{}}
	pending := &recordingPendingStore{}
	indexer := NewIndexService(&scriptedEmbedder{}, chunks, pending, 50, time.Minute)
	svc := NewDocumentService(indexer, docs, chunks, pending, nil)
	return svc, chunks, docs, pending
}

func TestTrainIndexesDocument(t *testing.T) {
	svc, chunks, docs, _ := newDocumentFixture()
	res, err := svc.Train(context.Background(), "notes.txt", "The quick fox jumps. The lazy dog sleeps.", model.StrategySmart)
	require.NoError(t, err)
	require.Positive(t, res.Indexed)
	require.Equal(t, res.Attempted, res.Indexed)
	require.NotEmpty(t, chunks.inserted)
	require.Len(t, docs.upserts, 1)
	require.Equal(t, model.StrategySmart, docs.upserts[0].Strategy)
}

func TestTrainFlattensMarkdown(t *testing.T) {
	svc, _, docs, _ := newDocumentFixture()
	_, err := svc.Train(context.Background(), "notes.md", "# Title\nSome *bold* prose.", model.StrategySmart)
	require.NoError(t, err)
	require.Len(t, docs.upserts, 1)
	raw := docs.upserts[0].RawText
	require.NotContains(t, raw, "#")
	require.NotContains(t, raw, "*")
	require.Contains(t, raw, "Some bold prose.")
}

func TestTrainRejectsBlankInput(t *testing.T) {
	svc, _, _, _ := newDocumentFixture()
	_, err := svc.Train(context.Background(), "notes.txt", "   ", model.StrategySmart)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestAppendRecomputesChunks(t *testing.T) {
	svc, chunks, docs, _ := newDocumentFixture()
	docs.docs["notes.txt"] = &model.Document{
		Filename:   "notes.txt",
		RawText:    "The quick fox jumps.",
		Strategy:   model.StrategySmart,
		SourceType: model.SourceUploaded,
	}
	res, err := svc.Append(context.Background(), "notes.txt", "The lazy dog sleeps.")
	require.NoError(t, err)
	require.Positive(t, res.Indexed)
	replaced := chunks.replaced["notes.txt"]
	require.NotEmpty(t, replaced)
	found := false
	for _, c := range replaced {
		if strings.Contains(c.Content, "lazy dog") {
			found = true
		}
	}
	require.True(t, found, "appended text missing from recomputed chunk set")
}

func TestAppendUnknownDocument(t *testing.T) {
	svc, _, _, _ := newDocumentFixture()
	_, err := svc.Append(context.Background(), "missing.txt", "more text")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestRetrainSwitchesStrategy(t *testing.T) {
	svc, chunks, docs, _ := newDocumentFixture()
	docs.docs["notes.txt"] = &model.Document{
		Filename:   "notes.txt",
		RawText:    "The quick fox jumps over the mat.",
		Strategy:   model.StrategySmart,
		SourceType: model.SourceUploaded,
	}
	_, err := svc.Retrain(context.Background(), "notes.txt", model.StrategyWord)
	require.NoError(t, err)
	require.Len(t, docs.upserts, 1)
	require.Equal(t, model.StrategyWord, docs.upserts[0].Strategy)
	for _, c := range chunks.replaced["notes.txt"] {
		require.Equal(t, model.ChunkTypeWord, c.ChunkType)
	}
}

func TestForgetRemovesEverything(t *testing.T) {
	svc, _, docs, pending := newDocumentFixture()
	docs.docs["notes.txt"] = &model.Document{Filename: "notes.txt"}
	err := svc.Forget(context.Background(), "notes.txt")
	require.NoError(t, err)
	require.Contains(t, pending.deletes, "notes.txt")
}

func TestResumeContinuesFromRecordedPosition(t *testing.T) {
	svc, chunks, docs, pending := newDocumentFixture()
	docs.docs["big.txt"] = &model.Document{
		Filename:   "big.txt",
		RawText:    "The quick fox jumps over the lazy dog near the river bank today.",
		Strategy:   model.StrategySmart,
		SourceType: model.SourceUploaded,
	}
	res, err := svc.Resume(context.Background(), model.PendingIngest{
		Filename:  "big.txt",
		Strategy:  model.StrategySmart,
		Processed: 2,
	})
	require.NoError(t, err)
	require.False(t, res.Resumable)
	require.Contains(t, pending.deletes, "big.txt")
	for _, c := range chunks.inserted {
		require.GreaterOrEqual(t, c.ChunkIndex, 2)
	}
}
