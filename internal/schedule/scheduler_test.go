package schedule

import (
	"context"
	"sync/atomic"
	"testing"
)

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func (b *blockingJob) Name() string { return "blocking" }

func (b *blockingJob) Run(ctx context.Context) error {
	b.runs.Add(1)
	close(b.started)
	<-b.release
	return nil
}

func TestRunnerSkipsWhileActive(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}
	fn := s.runner(job)

	go fn()
	<-job.started
	fn()
	close(job.release)

	if got := job.runs.Load(); got != 1 {
		t.Errorf("job ran %d times, want 1", got)
	}
}
