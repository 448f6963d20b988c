package jobs

import (
	"context"
	"time"

	"partnernet-backend/internal/config"
	"partnernet-backend/internal/logger"
	"partnernet-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	queue  service.QueueProcessor
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(queue service.QueueProcessor, cfg *config.Config) *JobRunner {
	return &JobRunner{
		queue:  queue,
		config: cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// DrainDeferredQueue runs one pass over the deferred queue. The periodic
// sweep guarantees forward progress even when the opportunistic drain after a
// form submission was lost to a crash.
func (jr *JobRunner) DrainDeferredQueue() {
	jr.runWithRecovery("drain-deferred-queue", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		processed, remaining, err := jr.queue.Drain(ctx)
		if err != nil {
			logger.Error("Queue drain failed", "error", err)
			return
		}
		logger.Info("Queue drained", "processed", processed, "remaining", remaining)
	})
}

// DrainOnce runs a single drain and returns the counts, for the CLI surface.
func (jr *JobRunner) DrainOnce(ctx context.Context) (int, int, error) {
	return jr.queue.Drain(ctx)
}
