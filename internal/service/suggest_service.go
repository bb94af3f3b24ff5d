package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/config"
	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
	"github.com/typeq/typeq/internal/suggest"
)

const embedTaskQuery = "RETRIEVAL_QUERY"

// strongLiteralCutoff: with this many literal matches the corpus
// clearly covers the input, so the generator call is skipped entirely.
const strongLiteralCutoff = 2

// AIClient is the slice of the AI manager the suggestion pipeline
// needs: query embedding plus continuation generation.
type AIClient interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	Complete(ctx context.Context, input string, contextChunks []string) (string, error)
}

type SuggestRequest struct {
	Text      string
	SessionID string
	Seq       uint64
}

type SuggestResponse struct {
	Mode        suggest.Mode       `json:"mode"`
	Suggestions []model.Suggestion `json:"suggestions"`
	Seq         uint64             `json:"seq,omitempty"`
}

// SuggestService runs the retrieval-and-ranking pipeline: classify the
// input, retrieve candidate chunks (hybrid semantic + literal), derive
// literal continuations, fall back to generation, merge and cap.
type SuggestService struct {
	ai     AIClient
	chunks ChunkStore
	cfg    config.SuggestConfig
	cache  *expirable.LRU[string, []model.Suggestion]

	seqMu sync.Mutex
	seqs  *expirable.LRU[string, uint64]
}

func NewSuggestService(ai AIClient, chunks ChunkStore, cfg config.SuggestConfig) *SuggestService {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &SuggestService{
		ai:     ai,
		chunks: chunks,
		cfg:    cfg,
		cache:  expirable.NewLRU[string, []model.Suggestion](cfg.CacheSize, nil, ttl),
		seqs:   expirable.NewLRU[string, uint64](cfg.CacheSize, nil, 10*time.Minute),
	}
}

func (s *SuggestService) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, appErr.ErrInvalid
	}
	q := suggest.Classify(req.Text)
	resp := &SuggestResponse{Mode: q.Mode, Seq: req.Seq, Suggestions: []model.Suggestion{}}
	if q.Mode == suggest.ModeSuppressed {
		return resp, nil
	}
	if err := s.checkStale(req); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(zap.String("mode", string(q.Mode)))

	key := s.cacheKey(q)
	if cached, ok := s.cache.Get(key); ok {
		resp.Suggestions = cached
		return resp, nil
	}

	kind := model.KindPhrase
	if q.Mode == suggest.ModeWord {
		kind = model.KindWord
	}

	var hits []model.ScoredChunk
	emb, embErr := s.ai.Embed(ctx, strings.TrimSpace(req.Text), embedTaskQuery)
	if embErr != nil {
		logger.Warn("query embedding failed, skipping retrieval", zap.Error(embErr))
	} else {
		var err error
		hits, err = s.chunks.Search(ctx, emb, s.cfg.Threshold, s.cfg.Count, q.LiteralHint(), s.cfg.LiteralWeight)
		if err != nil {
			logger.Error("chunk search failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", appErr.ErrRetrieval, err)
		}
	}

	corpus := make([]model.Suggestion, 0, len(hits))
	strong := 0
	for _, hit := range hits {
		cont := suggest.Extract(req.Text, hit.Content)
		if cont == "" {
			continue
		}
		source := model.SourceCorpusDerived
		if hit.Literal {
			source = model.SourceCorpusLiteral
			strong++
		}
		corpus = append(corpus, model.Suggestion{
			Text:       cont,
			Source:     source,
			Similarity: hit.Similarity,
			Kind:       kind,
		})
	}

	var generated []model.Suggestion
	if strong < strongLiteralCutoff {
		gen, err := s.ai.Complete(ctx, req.Text, topContents(hits, s.cfg.ContextChunks))
		if err != nil {
			logger.Warn("generation failed, extractor-only result", zap.Error(err))
		} else if cont := trimGenerated(req.Text, gen); cont != "" {
			generated = append(generated, model.Suggestion{Text: cont, Source: model.SourceGenerated, Kind: kind})
		}
	} else {
		logger.Debug("strong literal coverage, skipping generator", zap.Int("strong", strong))
	}

	if embErr != nil && len(corpus) == 0 && len(generated) == 0 {
		return nil, fmt.Errorf("no suggestion source available: %w", embErr)
	}

	resp.Suggestions = suggest.Merge(corpus, generated, suggest.Ranking(s.cfg.Ranking), s.cfg.MaxSuggestions)
	s.cache.Add(key, resp.Suggestions)
	return resp, nil
}

// checkStale drops requests whose sequence number is behind the newest
// one seen for the session. Without it a slow retrieval for an old
// keystroke could overwrite fresher suggestion state on the client.
func (s *SuggestService) checkStale(req SuggestRequest) error {
	if req.SessionID == "" || req.Seq == 0 {
		return nil
	}
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	last, ok := s.seqs.Get(req.SessionID)
	if ok && req.Seq < last {
		return appErr.ErrStale
	}
	s.seqs.Add(req.SessionID, req.Seq)
	return nil
}

func (s *SuggestService) cacheKey(q suggest.Query) string {
	return string(q.Mode) + ":" + strings.TrimSpace(q.Text)
}

// trimGenerated cuts any echo of already-typed text off the front of a
// generated continuation.
func trimGenerated(input, gen string) string {
	gen = strings.TrimSpace(gen)
	if gen == "" {
		return ""
	}
	if k := suggest.Overlap(input, gen); k > 0 {
		gen = strings.TrimLeft(gen[k:], " ")
	}
	return gen
}

func topContents(hits []model.ScoredChunk, limit int) []string {
	if limit <= 0 || limit > len(hits) {
		limit = len(hits)
	}
	out := make([]string, 0, limit)
	for _, hit := range hits[:limit] {
		out = append(out, hit.Content)
	}
	return out
}
