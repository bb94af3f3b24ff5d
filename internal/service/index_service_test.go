package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/typeq/typeq/internal/model"
)

type scriptedEmbedder struct {
	mu     sync.Mutex
	failOn map[string]bool
	calls  int
}

func (s *scriptedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn[text] {
		return nil, errors.New("embed failed")
	}
	return []float32{0.1, 0.2}, nil
}

type recordingChunkStore struct {
	fakeChunkSearch
	inserted []*model.Chunk
	replaced map[string][]*model.Chunk
}

func (r *recordingChunkStore) Insert(ctx context.Context, chunk *model.Chunk) error {
	r.inserted = append(r.inserted, chunk)
	return nil
}

func (r *recordingChunkStore) ReplaceDocument(ctx context.Context, filename string, chunks []*model.Chunk) error {
	if r.replaced == nil {
		r.replaced = map[string][]*model.Chunk{}
	}
	r.replaced[filename] = chunks
	return nil
}

type recordingPendingStore struct {
	upserts []*model.PendingIngest
	deletes []string
}

func (r *recordingPendingStore) Upsert(ctx context.Context, item *model.PendingIngest) error {
	r.upserts = append(r.upserts, item)
	return nil
}

func (r *recordingPendingStore) List(ctx context.Context, limit int) ([]model.PendingIngest, error) {
	return nil, nil
}

func (r *recordingPendingStore) Delete(ctx context.Context, filename string) error {
	r.deletes = append(r.deletes, filename)
	return nil
}

func TestIndexChunksSkipsFailedEmbeddings(t *testing.T) {
	embedder := &scriptedEmbedder{failOn: map[string]bool{"bad": true}}
	chunks := &recordingChunkStore{}
	pending := &recordingPendingStore{}
	svc := NewIndexService(embedder, chunks, pending, 50, time.Minute)

	res, err := svc.IndexChunks(context.Background(), "notes.txt", model.StrategySmart, model.SourceUploaded, []string{"alpha one", "bad", "gamma three"}, 0)
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempted)
	require.Equal(t, 2, res.Indexed)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 3, res.Processed)
	require.False(t, res.Resumable)
	require.Len(t, chunks.inserted, 2)
	require.Contains(t, pending.deletes, "notes.txt")
}

func TestIndexChunksTimeLimitReturnsPartialResult(t *testing.T) {
	embedder := &scriptedEmbedder{}
	chunks := &recordingChunkStore{}
	pending := &recordingPendingStore{}
	clock := time.Unix(0, 0)
	svc := &IndexService{
		embedder:  embedder,
		chunks:    chunks,
		pending:   pending,
		batchSize: 1,
		timeLimit: 10 * time.Second,
		now: func() time.Time {
			clock = clock.Add(6 * time.Second)
			return clock
		},
	}

	res, err := svc.IndexChunks(context.Background(), "big.txt", model.StrategySmart, model.SourceUploaded, []string{"one", "two", "three"}, 0)
	require.NoError(t, err)
	require.True(t, res.Resumable)
	require.Equal(t, 1, res.Indexed)
	require.Equal(t, 1, res.Processed)
	require.Equal(t, 2, res.Remaining)
	require.Len(t, pending.upserts, 1)
	require.Equal(t, "big.txt", pending.upserts[0].Filename)
	require.Equal(t, 1, pending.upserts[0].Processed)
	require.Empty(t, pending.deletes)
}

func TestBuildChunksRenumbersAfterDrops(t *testing.T) {
	embedder := &scriptedEmbedder{failOn: map[string]bool{"bad": true}}
	svc := NewIndexService(embedder, &recordingChunkStore{}, &recordingPendingStore{}, 50, time.Minute)

	out, failed, err := svc.BuildChunks(context.Background(), "notes.txt", model.StrategySmart, model.SourceUploaded, []string{"alpha one", "bad", "gamma three"})
	require.NoError(t, err)
	require.Equal(t, 1, failed)
	require.Len(t, out, 2)
	for i, chunk := range out {
		require.Equal(t, i, chunk.ChunkIndex)
		require.Equal(t, 2, chunk.TotalChunks)
	}
}

func TestReplaceDocumentSwapsChunkSet(t *testing.T) {
	embedder := &scriptedEmbedder{}
	chunks := &recordingChunkStore{}
	svc := NewIndexService(embedder, chunks, &recordingPendingStore{}, 50, time.Minute)

	res, err := svc.ReplaceDocument(context.Background(), "notes.txt", model.StrategySmart, model.SourceUploaded, []string{"alpha one", "gamma three"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Indexed)
	require.Len(t, chunks.replaced["notes.txt"], 2)
}
