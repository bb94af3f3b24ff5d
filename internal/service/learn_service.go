package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
	"github.com/typeq/typeq/internal/suggest"
)

const minLearnChars = 3

// ChunkBuilder embeds a recomputed chunk set without persisting it.
type ChunkBuilder interface {
	BuildChunks(ctx context.Context, filename string, strategy model.ChunkStrategy, source model.SourceType, contents []string) ([]*model.Chunk, int, error)
}

type LearnRequest struct {
	AcceptedText string
	Context      string
	Source       model.SuggestionSource
}

type LearnResult struct {
	Learned bool   `json:"learned"`
	Reason  string `json:"reason,omitempty"`
}

// LearnService feeds accepted generated suggestions back into the
// index. The auto-learned corpus is one logical document whose chunk
// set is recomputed from its accumulated text on every acceptance.
type LearnService struct {
	ai           Embedder
	chunks       ChunkStore
	docs         DocumentStore
	builder      ChunkBuilder
	dupThreshold float32
}

func NewLearnService(ai Embedder, chunks ChunkStore, docs DocumentStore, builder ChunkBuilder, dupThreshold float32) *LearnService {
	if dupThreshold <= 0 {
		dupThreshold = 0.95
	}
	return &LearnService{
		ai:           ai,
		chunks:       chunks,
		docs:         docs,
		builder:      builder,
		dupThreshold: dupThreshold,
	}
}

func (s *LearnService) Learn(ctx context.Context, req LearnRequest) (*LearnResult, error) {
	logger := logutil.GetLogger(ctx)
	if req.Source != model.SourceGenerated {
		// Corpus-sourced acceptances are already indexed.
		return &LearnResult{Learned: false, Reason: "source not generated"}, nil
	}
	accepted := strings.TrimSpace(req.AcceptedText)
	if len(accepted) < minLearnChars {
		return &LearnResult{Learned: false, Reason: "too short"}, nil
	}

	// The accepted continuation alone is often a fragment; together
	// with the text it completed it forms the sentence worth indexing.
	learned := accepted
	if prefix := strings.TrimSpace(req.Context); prefix != "" {
		joined := prefix + req.AcceptedText
		if !strings.HasPrefix(req.AcceptedText, " ") && !strings.HasSuffix(prefix, " ") {
			joined = prefix + " " + accepted
		}
		learned = strings.TrimSpace(joined)
	}

	emb, err := s.ai.Embed(ctx, learned, embedTaskDocument)
	if err != nil {
		return nil, fmt.Errorf("embed accepted text: %w", err)
	}
	hits, err := s.chunks.Search(ctx, emb, s.dupThreshold, 1, "", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrRetrieval, err)
	}
	if len(hits) > 0 {
		logger.Debug("accepted text near-duplicates an indexed chunk",
			zap.Float32("similarity", hits[0].Similarity),
			zap.String("filename", hits[0].Filename),
		)
		return &LearnResult{Learned: false, Reason: "duplicate"}, nil
	}

	raw := ""
	doc, err := s.docs.Get(ctx, model.AutoLearnedFilename)
	if err == nil {
		raw = doc.RawText
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	combined := strings.TrimSpace(raw + "\n" + learned)
	units := suggest.Chunk(combined, model.StrategySmart)
	if len(units) == 0 {
		return &LearnResult{Learned: false, Reason: "no indexable text"}, nil
	}
	chunks, _, err := s.builder.BuildChunks(ctx, model.AutoLearnedFilename, model.StrategySmart, model.SourceAutoLearned, units)
	if err != nil {
		return nil, err
	}
	if err := s.chunks.ReplaceDocument(ctx, model.AutoLearnedFilename, chunks); err != nil {
		return nil, err
	}
	if err := s.docs.Upsert(ctx, &model.Document{
		Filename:   model.AutoLearnedFilename,
		RawText:    combined,
		Strategy:   model.StrategySmart,
		SourceType: model.SourceAutoLearned,
		Mtime:      time.Now().UnixMilli(),
	}); err != nil {
		return nil, err
	}
	logger.Info("auto-learned accepted suggestion",
		zap.Int("chars", len(learned)),
		zap.Int("chunks", len(chunks)),
	)
	return &LearnResult{Learned: true, Reason: "learned"}, nil
}
