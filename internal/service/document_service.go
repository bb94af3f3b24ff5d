package service

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/filestore"
	"github.com/typeq/typeq/internal/model"
	appErr "github.com/typeq/typeq/internal/pkg/errors"
	"github.com/typeq/typeq/internal/suggest"
)

type DocumentStore interface {
	Get(ctx context.Context, filename string) (*model.Document, error)
	Upsert(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, filename string) error
	List(ctx context.Context) ([]model.Document, error)
}

// DocumentService owns document lifecycle: train indexes a fresh
// document, append/retrain recompute the chunk projection from the
// accumulated raw text, forget removes everything. Original uploads
// are kept in the filestore, independent of the chunk index.
type DocumentService struct {
	indexer      *IndexService
	docs         DocumentStore
	chunks       ChunkStore
	pending      PendingStore
	files        filestore.Store
	chunkSize    int
	chunkOverlap int
}

func NewDocumentService(indexer *IndexService, docs DocumentStore, chunks ChunkStore, pending PendingStore, files filestore.Store) *DocumentService {
	return &DocumentService{
		indexer:      indexer,
		docs:         docs,
		chunks:       chunks,
		pending:      pending,
		files:        files,
		chunkSize:    suggest.DefaultChunkSize,
		chunkOverlap: suggest.DefaultChunkOverlap,
	}
}

// Train ingests a document from scratch: any previous chunk set for
// the filename is dropped and the text is re-indexed under the chosen
// strategy. Returns a partial, resumable result when indexing hits the
// wall-clock limit.
func (s *DocumentService) Train(ctx context.Context, filename, text string, strategy model.ChunkStrategy) (*model.IndexResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.TrimSpace(text) == "" {
		return nil, appErr.ErrInvalid
	}
	if strategy == "" {
		strategy = model.StrategySmart
	}
	plain := s.flatten(filename, text)

	if s.files != nil {
		if err := s.files.Save(ctx, filename, newBytesFile(text), int64(len(text))); err != nil {
			logger.Warn("failed to store original document", zap.Error(err))
		}
	}
	if err := s.docs.Upsert(ctx, &model.Document{
		Filename:   filename,
		RawText:    plain,
		Strategy:   strategy,
		SourceType: model.SourceUploaded,
		Mtime:      time.Now().UnixMilli(),
	}); err != nil {
		return nil, err
	}

	units := s.chunkText(plain, strategy)
	if len(units) == 0 {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.chunks.DeleteByFilename(ctx, filename); err != nil {
		return nil, err
	}
	return s.indexer.IndexChunks(ctx, filename, strategy, model.SourceUploaded, units, 0)
}

// Append adds text to a document's accumulated raw text and
// recomputes its chunk set transactionally.
func (s *DocumentService) Append(ctx context.Context, filename, text string) (*model.IndexResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.ErrInvalid
	}
	doc, err := s.docs.Get(ctx, filename)
	if err != nil {
		return nil, err
	}
	combined := strings.TrimSpace(doc.RawText + "\n" + s.flatten(filename, text))
	doc.RawText = combined
	doc.Mtime = time.Now().UnixMilli()
	if err := s.docs.Upsert(ctx, doc); err != nil {
		return nil, err
	}
	units := s.chunkText(combined, doc.Strategy)
	if len(units) == 0 {
		return nil, appErr.ErrInvalid
	}
	return s.indexer.ReplaceDocument(ctx, filename, doc.Strategy, doc.SourceType, units)
}

// Retrain recomputes the chunk set from the stored raw text, under a
// new strategy when one is given.
func (s *DocumentService) Retrain(ctx context.Context, filename string, strategy model.ChunkStrategy) (*model.IndexResult, error) {
	doc, err := s.docs.Get(ctx, filename)
	if err != nil {
		return nil, err
	}
	if strategy != "" && strategy != doc.Strategy {
		doc.Strategy = strategy
		doc.Mtime = time.Now().UnixMilli()
		if err := s.docs.Upsert(ctx, doc); err != nil {
			return nil, err
		}
	}
	units := s.chunkText(doc.RawText, doc.Strategy)
	if len(units) == 0 {
		return nil, appErr.ErrInvalid
	}
	return s.indexer.ReplaceDocument(ctx, filename, doc.Strategy, doc.SourceType, units)
}

// Resume continues an ingest that was cut off by the time limit.
func (s *DocumentService) Resume(ctx context.Context, item model.PendingIngest) (*model.IndexResult, error) {
	doc, err := s.docs.Get(ctx, item.Filename)
	if err != nil {
		return nil, err
	}
	units := s.chunkText(doc.RawText, item.Strategy)
	if item.Processed >= len(units) {
		return &model.IndexResult{Processed: item.Processed}, s.pending.Delete(ctx, item.Filename)
	}
	return s.indexer.IndexChunks(ctx, item.Filename, item.Strategy, doc.SourceType, units, item.Processed)
}

func (s *DocumentService) Forget(ctx context.Context, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return appErr.ErrInvalid
	}
	if _, err := s.chunks.DeleteByFilename(ctx, filename); err != nil {
		return err
	}
	if err := s.pending.Delete(ctx, filename); err != nil {
		return err
	}
	return s.docs.Delete(ctx, filename)
}

func (s *DocumentService) List(ctx context.Context) ([]model.DocumentStat, error) {
	return s.chunks.ListDocumentStats(ctx)
}

// DocumentDetail is one document plus the size of its current chunk
// projection.
type DocumentDetail struct {
	model.Document
	ChunkCount int `json:"chunk_count"`
}

func (s *DocumentService) Get(ctx context.Context, filename string) (*DocumentDetail, error) {
	doc, err := s.docs.Get(ctx, filename)
	if err != nil {
		return nil, err
	}
	count, err := s.chunks.CountByFilename(ctx, filename)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{Document: *doc, ChunkCount: count}, nil
}

// Chunks exposes the indexed chunk set of a document, mainly for
// inspecting what retrieval actually sees.
func (s *DocumentService) Chunks(ctx context.Context, filename string) ([]model.Chunk, error) {
	if _, err := s.docs.Get(ctx, filename); err != nil {
		return nil, err
	}
	return s.chunks.ListByFilename(ctx, filename)
}

// OpenOriginal streams the stored upload as it arrived, before
// flattening and chunking.
func (s *DocumentService) OpenOriginal(ctx context.Context, filename string) (filestore.ReadSeekCloser, error) {
	if s.files == nil {
		return nil, appErr.ErrNotFound
	}
	f, err := s.files.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// chunkText applies the selected extraction strategy and, for long
// texts, folds in length-bounded overlap chunks so whole passages stay
// retrievable alongside the fine-grained units.
func (s *DocumentService) chunkText(text string, strategy model.ChunkStrategy) []string {
	units := suggest.Chunk(text, strategy)
	if len(text) > s.chunkSize {
		units = append(units, suggest.ChunkDocument(text, s.chunkSize, s.chunkOverlap)...)
	}
	return dedupeUnits(units)
}

// flatten strips markdown structure from .md uploads so chunking sees
// prose, not syntax.
func (s *DocumentService) flatten(filename, text string) string {
	if !strings.HasSuffix(strings.ToLower(filename), ".md") {
		return strings.TrimSpace(text)
	}
	md := goldmark.New()
	source := []byte(text)
	reader := gtext.NewReader(source)
	doc := md.Parser().Parse(reader)
	var sb strings.Builder
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func dedupeUnits(units []string) []string {
	seen := make(map[string]struct{}, len(units))
	out := make([]string, 0, len(units))
	for _, u := range units {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

type bytesFile struct {
	*bytes.Reader
}

func newBytesFile(content string) *bytesFile {
	return &bytesFile{Reader: bytes.NewReader([]byte(content))}
}

func (b *bytesFile) Close() error {
	return nil
}
