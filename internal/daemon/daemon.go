// daemon/daemon.go - Background process lifecycle
package daemon

import (
	"context"
	"sync"

	"upgrade-analyzer/internal/job"
	"upgrade-analyzer/pkg/logger"
)

// Daemon owns the background jobs and their shared lifecycle. HTTP serving
// is managed separately in main; the daemon only covers the job loops.
type Daemon struct {
	batchRunner *job.BatchRunnerJob
	cleanup     *job.CleanupJob
	logger      logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewDaemon creates the daemon around its jobs
func NewDaemon(batchRunner *job.BatchRunnerJob, cleanup *job.CleanupJob, logger logger.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		batchRunner: batchRunner,
		cleanup:     cleanup,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches all background jobs
func (d *Daemon) Start() {
	d.logger.Info("daemon started")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.batchRunner.Start(d.ctx)
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.cleanup.Start(d.ctx)
	}()
}

// Stop cancels all jobs and waits for them to exit
func (d *Daemon) Stop() {
	d.logger.Info("stopping daemon...")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("daemon stopped")
}
