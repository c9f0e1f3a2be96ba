// job/cleanup_job.go - Backup retention and stale run cleanup
package job

import (
	"context"
	"errors"
	"os"
	"time"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/repository"
	"upgrade-analyzer/pkg/logger"
)

// CleanupJob removes backups past the retention window and clears runs that
// have been stuck in running state longer than the stale threshold.
type CleanupJob struct {
	backupRepo     repository.BackupRepository
	store          repository.StateStoreInterface
	retentionDays  int
	staleRunWindow time.Duration
	logger         logger.Logger
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(
	backupRepo repository.BackupRepository,
	store repository.StateStoreInterface,
	retentionDays int,
	staleRunWindow time.Duration,
	logger logger.Logger,
) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if staleRunWindow <= 0 {
		staleRunWindow = 24 * time.Hour
	}
	return &CleanupJob{
		backupRepo:     backupRepo,
		store:          store,
		retentionDays:  retentionDays,
		staleRunWindow: staleRunWindow,
		logger:         logger,
	}
}

// Start runs one cleanup immediately, then daily at 22:00
func (j *CleanupJob) Start(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("recovered from panic in cleanup job: %v", r)
		}
	}()

	j.logger.Info("cleanup job started")

	j.executeCleanup()

	for {
		nextRun := j.getNextRunTime()
		j.logger.Info("next cleanup scheduled at: %s", nextRun.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			j.logger.Info("cleanup job stopped")
			return
		case <-time.After(time.Until(nextRun)):
			j.executeCleanup()
		}
	}
}

// getNextRunTime returns the next 22:00 local time
func (j *CleanupJob) getNextRunTime() time.Time {
	now := time.Now()
	nextRun := time.Date(now.Year(), now.Month(), now.Day(), 22, 0, 0, 0, now.Location())
	if now.After(nextRun) {
		nextRun = nextRun.Add(24 * time.Hour)
	}
	return nextRun
}

func (j *CleanupJob) executeCleanup() {
	j.cleanupBackups()
	j.cleanupStaleRuns()
}

// cleanupBackups removes backup files and records past retention
func (j *CleanupJob) cleanupBackups() {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	expired, err := j.backupRepo.GetBackupsOlderThan(cutoff)
	if err != nil {
		j.logger.Error("failed to get expired backups: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	j.logger.Info("found %d expired backups to delete", len(expired))
	removed := 0
	for _, b := range expired {
		if err := os.Remove(b.BackupPath); err != nil && !os.IsNotExist(err) {
			j.logger.Warn("failed to remove backup file %s: %v", b.BackupPath, err)
			continue
		}
		if err := j.backupRepo.DeleteBackup(b.ID); err != nil {
			j.logger.Error("failed to delete backup record %d: %v", b.ID, err)
			continue
		}
		removed++
	}
	j.logger.Info("deleted %d expired backups", removed)
}

// cleanupStaleRuns sweeps every persisted run, dropping those running longer
// than the stale window so a crashed client does not block new runs forever.
// Orphaned run keys left behind without a pointer are collected the same way.
func (j *CleanupJob) cleanupStaleRuns() {
	activeID := ""
	if err := j.store.Get(repository.KeyCurrentBatch, &activeID); err != nil && !errors.Is(err, errs.ErrKeyNotFound) {
		j.logger.Error("failed to read active run pointer: %v", err)
		return
	}

	if activeID != "" {
		exists, err := j.store.Has(repository.BatchRunKey(activeID))
		if err != nil {
			j.logger.Error("failed to check run %s: %v", activeID, err)
			return
		}
		if !exists {
			// Pointer with no run behind it
			j.logger.Warn("clearing dangling run pointer to %s", activeID)
			if err := j.store.Delete(repository.KeyCurrentBatch); err != nil {
				j.logger.Error("failed to clear dangling run pointer: %v", err)
			}
			activeID = ""
		}
	}

	keys, err := j.store.Keys(repository.KeyBatchPrefix)
	if err != nil {
		j.logger.Error("failed to list run keys: %v", err)
		return
	}

	for _, key := range keys {
		var run model.BatchRun
		if err := j.store.Get(key, &run); err != nil {
			j.logger.Warn("failed to load run at %s: %v", key, err)
			continue
		}
		if time.Since(run.StartedAt) < j.staleRunWindow {
			continue
		}

		j.logger.Warn("clearing stale run %s started at %s", run.ID, run.StartedAt.Format(time.RFC3339))
		if err := j.store.Delete(key); err != nil {
			j.logger.Error("failed to delete stale run %s: %v", run.ID, err)
			continue
		}
		if run.ID == activeID {
			if err := j.store.Delete(repository.KeyCurrentBatch); err != nil {
				j.logger.Error("failed to clear run pointer for stale run %s: %v", run.ID, err)
			}
		}
	}
}
