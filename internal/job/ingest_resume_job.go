package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/typeq/typeq/internal/model"
	"github.com/typeq/typeq/internal/service"
)

// IngestResumeJob picks up ingests that were cut off by the wall-clock
// limit and keeps indexing from the recorded position.
type IngestResumeJob struct {
	docs    *service.DocumentService
	pending service.PendingStore
	limit   int
}

func NewIngestResumeJob(docs *service.DocumentService, pending service.PendingStore, limit int) *IngestResumeJob {
	if limit <= 0 {
		limit = 5
	}
	return &IngestResumeJob{docs: docs, pending: pending, limit: limit}
}

func (j *IngestResumeJob) Name() string {
	return "ingest_resume"
}

func (j *IngestResumeJob) Run(ctx context.Context) error {
	if j.docs == nil || j.pending == nil {
		return nil
	}
	items, err := j.pending.List(ctx, j.limit)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, item := range items {
		res, err := j.docs.Resume(ctx, item)
		if err != nil {
			logger.Warn("resume ingest failed", zap.String("filename", item.Filename), zap.Error(err))
			continue
		}
		logResumeResult(logger, item, res)
	}
	return nil
}

func logResumeResult(logger *zap.Logger, item model.PendingIngest, res *model.IndexResult) {
	logger.Info("resumed ingest",
		zap.String("filename", item.Filename),
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
		zap.Int("remaining", res.Remaining),
		zap.Bool("resumable", res.Resumable),
	)
}
