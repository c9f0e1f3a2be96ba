// job/batch_runner_job.go - Background batch stepping job
package job

import (
	"context"
	"errors"
	"time"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/service"
	"upgrade-analyzer/pkg/logger"
)

// BatchRunnerJob drives the active analysis run forward one chunk per tick.
// The API only starts and resumes runs; this job does the actual processing
// so HTTP requests never block on AI calls.
type BatchRunnerJob struct {
	analysisService service.AnalysisService
	interval        time.Duration
	logger          logger.Logger
}

// NewBatchRunnerJob creates a new batch runner job
func NewBatchRunnerJob(analysisService service.AnalysisService, interval time.Duration, logger logger.Logger) *BatchRunnerJob {
	if interval <= 0 {
		interval = time.Second
	}
	return &BatchRunnerJob{
		analysisService: analysisService,
		interval:        interval,
		logger:          logger,
	}
}

// Start runs the stepping loop until ctx is cancelled
func (j *BatchRunnerJob) Start(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("recovered from panic in batch runner job: %v", r)
		}
	}()

	j.logger.Info("batch runner job started, step interval %s", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("batch runner job stopped")
			return
		case <-ticker.C:
			j.step(ctx)
		}
	}
}

// step processes one chunk of the active run, if any
func (j *BatchRunnerJob) step(ctx context.Context) {
	runID, err := j.analysisService.ActiveRunID()
	if err != nil {
		if !errors.Is(err, errs.ErrKeyNotFound) {
			j.logger.Error("failed to read active run pointer: %v", err)
		}
		return
	}

	progress, err := j.analysisService.ProcessNextChunk(ctx, runID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		// Another driver may finalize the run between the pointer read and
		// the step call
		if errors.Is(err, errs.ErrKeyNotFound) {
			return
		}
		j.logger.Error("failed to process chunk for run %s: %v", runID, err)
		return
	}

	j.logger.Info("run %s progress: %d/%d files (%.1f%%)",
		progress.RunID, progress.FilesProcessed, progress.TotalFiles, progress.Percent)
}
