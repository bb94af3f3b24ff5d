package service

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/model"
	"github.com/typeq/typeq/internal/suggest"
)

// Embedder is the slice of the AI manager the indexer needs.
type Embedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
}

// ChunkStore is the vector-capable store the pipeline reads and writes.
type ChunkStore interface {
	Insert(ctx context.Context, chunk *model.Chunk) error
	ReplaceDocument(ctx context.Context, filename string, chunks []*model.Chunk) error
	DeleteByFilename(ctx context.Context, filename string) (int64, error)
	Search(ctx context.Context, embedding []float32, threshold float32, limit int, literal string, literalWeight float32) ([]model.ScoredChunk, error)
	ListByFilename(ctx context.Context, filename string) ([]model.Chunk, error)
	CountByFilename(ctx context.Context, filename string) (int, error)
	ListDocumentStats(ctx context.Context) ([]model.DocumentStat, error)
}

type PendingStore interface {
	Upsert(ctx context.Context, item *model.PendingIngest) error
	List(ctx context.Context, limit int) ([]model.PendingIngest, error)
	Delete(ctx context.Context, filename string) error
}

const embedTaskDocument = "RETRIEVAL_DOCUMENT"

// IndexService embeds chunks and persists them. Batches run
// sequentially with parallel embedding inside each batch; a wall-clock
// limit turns a long ingest into a resumable partial result instead of
// an open-ended request.
type IndexService struct {
	embedder  Embedder
	chunks    ChunkStore
	pending   PendingStore
	batchSize int
	timeLimit time.Duration
	now       func() time.Time
}

func NewIndexService(embedder Embedder, chunks ChunkStore, pending PendingStore, batchSize int, timeLimit time.Duration) *IndexService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if timeLimit <= 0 {
		timeLimit = 25 * time.Second
	}
	return &IndexService{
		embedder:  embedder,
		chunks:    chunks,
		pending:   pending,
		batchSize: batchSize,
		timeLimit: timeLimit,
		now:       time.Now,
	}
}

// IndexChunks embeds and inserts contents[startAt:] for one document.
// Individual embedding or insert failures are logged and skipped; the
// batch keeps going. When the wall-clock limit hits, the remaining
// range is recorded so the resume job (or a re-submission of the same
// text) can continue from where it stopped.
func (s *IndexService) IndexChunks(ctx context.Context, filename string, strategy model.ChunkStrategy, source model.SourceType, contents []string, startAt int) (*model.IndexResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename), zap.String("strategy", string(strategy)))
	total := len(contents)
	if startAt < 0 {
		startAt = 0
	}
	res := &model.IndexResult{Processed: startAt}
	start := s.now()

	for batchStart := startAt; batchStart < total; batchStart += s.batchSize {
		if s.now().Sub(start) > s.timeLimit {
			res.Remaining = total - batchStart
			res.Resumable = true
			if err := s.pending.Upsert(ctx, &model.PendingIngest{
				Filename:  filename,
				Strategy:  strategy,
				Processed: batchStart,
				Ctime:     s.now().Unix(),
			}); err != nil {
				logger.Error("failed to record pending ingest", zap.Error(err))
			}
			logger.Warn("ingest hit time limit, returning partial result",
				zap.Int("processed", batchStart),
				zap.Int("remaining", res.Remaining),
			)
			return res, nil
		}
		batchEnd := batchStart + s.batchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := contents[batchStart:batchEnd]
		embeddings, failures := s.embedBatch(ctx, batch)
		res.Attempted += len(batch)
		now := s.now().Unix()
		for i, content := range batch {
			if failures[i] != nil {
				logger.Warn("embedding failed, skipping chunk", zap.Int("index", batchStart+i), zap.Error(failures[i]))
				res.Failed++
				continue
			}
			chunk := &model.Chunk{
				Content:   content,
				Embedding: embeddings[i],
				ChunkMetadata: model.ChunkMetadata{
					Filename:    filename,
					ChunkIndex:  batchStart + i,
					TotalChunks: total,
					ChunkType:   suggest.TypeOf(content),
					Strategy:    strategy,
					SourceType:  source,
					Ctime:       now,
				},
			}
			if err := s.chunks.Insert(ctx, chunk); err != nil {
				logger.Warn("chunk insert failed, skipping", zap.Int("index", batchStart+i), zap.Error(err))
				res.Failed++
				continue
			}
			res.Indexed++
		}
		res.Processed = batchEnd
	}
	if err := s.pending.Delete(ctx, filename); err != nil {
		logger.Warn("failed to clear pending ingest", zap.Error(err))
	}
	logger.Info("indexing finished",
		zap.Int("attempted", res.Attempted),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// BuildChunks embeds all contents and returns the assembled chunk set
// without persisting it, for callers that replace a document's chunks
// transactionally. The second return value counts chunks dropped due
// to embedding failures.
func (s *IndexService) BuildChunks(ctx context.Context, filename string, strategy model.ChunkStrategy, source model.SourceType, contents []string) ([]*model.Chunk, int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))
	total := len(contents)
	out := make([]*model.Chunk, 0, total)
	failed := 0
	now := s.now().Unix()
	for batchStart := 0; batchStart < total; batchStart += s.batchSize {
		batchEnd := batchStart + s.batchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := contents[batchStart:batchEnd]
		embeddings, failures := s.embedBatch(ctx, batch)
		for i, content := range batch {
			if failures[i] != nil {
				logger.Warn("embedding failed, dropping chunk", zap.Int("index", batchStart+i), zap.Error(failures[i]))
				failed++
				continue
			}
			out = append(out, &model.Chunk{
				Content:   content,
				Embedding: embeddings[i],
				ChunkMetadata: model.ChunkMetadata{
					Filename:    filename,
					ChunkIndex:  batchStart + i,
					TotalChunks: total,
					ChunkType:   suggest.TypeOf(content),
					Strategy:    strategy,
					SourceType:  source,
					Ctime:       now,
				},
			})
		}
	}
	// Re-number so chunk_index stays a dense 0-based sequence even
	// after drops.
	for i, chunk := range out {
		chunk.ChunkIndex = i
		chunk.TotalChunks = len(out)
	}
	return out, failed, nil
}

// ReplaceDocument recomputes a document's chunk set and swaps it in
// one transaction.
func (s *IndexService) ReplaceDocument(ctx context.Context, filename string, strategy model.ChunkStrategy, source model.SourceType, contents []string) (*model.IndexResult, error) {
	chunks, failed, err := s.BuildChunks(ctx, filename, strategy, source, contents)
	if err != nil {
		return nil, err
	}
	if err := s.chunks.ReplaceDocument(ctx, filename, chunks); err != nil {
		return nil, err
	}
	return &model.IndexResult{
		Attempted: len(contents),
		Indexed:   len(chunks),
		Failed:    failed,
		Processed: len(contents),
	}, nil
}

func (s *IndexService) embedBatch(ctx context.Context, batch []string) ([][]float32, []error) {
	embeddings := make([][]float32, len(batch))
	failures := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, content := range batch {
		wg.Add(1)
		go func(i int, content string) {
			defer wg.Done()
			emb, err := s.embedder.Embed(ctx, content, embedTaskDocument)
			if err != nil {
				failures[i] = err
				return
			}
			embeddings[i] = emb
		}(i, content)
	}
	wg.Wait()
	return embeddings, failures
}
