// patcher.go - Patch generation, safe application and rollback
package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"upgrade-analyzer/internal/config"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/repository"
	"upgrade-analyzer/pkg/logger"
)

// PatchService generates diffs from proposed edits and applies them with a
// backup-first protocol: every touched file is backed up and the backup
// validated before the first byte of the target is modified, and any failure
// mid-apply restores all files from those backups. A target file is never
// left partially modified.
type PatchService interface {
	Generate(changeID, description string, edits []model.FileEdit) (*model.Patch, error)
	IsSafe(changeID string) (bool, error)
	Apply(changeID string) error
	Rollback(changeID string) error
	GetPatch(changeID string) (*model.Patch, error)
	ListPatches(status string, limit int) ([]*model.Patch, error)
}

type patchService struct {
	patches    repository.PatchRepository
	backups    repository.BackupRepository
	backupsDir string
	logger     logger.Logger
	dmp        *diffmatchpatch.DiffMatchPatch
}

// NewPatchService creates the patch service. backupsDir is the root under
// which per-change backup directories are created.
func NewPatchService(
	patches repository.PatchRepository,
	backups repository.BackupRepository,
	backupsDir string,
	logger logger.Logger,
) PatchService {
	return &patchService{
		patches:    patches,
		backups:    backups,
		backupsDir: backupsDir,
		logger:     logger,
		dmp:        diffmatchpatch.New(),
	}
}

// Generate diffs each edit and stores a pending patch record. The original
// content in each edit must match the file on disk at apply time or the
// apply is rejected. When auto-apply is configured the patch is applied
// immediately after generation, gated by the same dry run as a manual apply.
func (s *patchService) Generate(changeID, description string, edits []model.FileEdit) (*model.Patch, error) {
	if changeID == "" {
		return nil, errs.NewMissingParamError("changeId")
	}
	if len(edits) == 0 {
		return nil, errs.NewMissingParamError("edits")
	}

	cfg := config.GetClientConfig().Patch

	var filePatches []model.FilePatch
	var display strings.Builder
	for _, edit := range edits {
		if edit.Path == "" {
			return nil, errs.NewMissingParamError("edits.path")
		}
		if edit.Original == edit.Modified {
			continue
		}
		diffs := s.dmp.DiffMain(edit.Original, edit.Modified, false)
		patches := s.dmp.PatchMake(edit.Original, diffs)
		filePatches = append(filePatches, model.FilePatch{
			Path: edit.Path,
			Diff: s.dmp.PatchToText(patches),
		})
		if cfg.Format == model.PatchFormatContext {
			s.renderContextDiff(&display, edit)
		} else {
			fmt.Fprintf(&display, "--- %s\n+++ %s\n%s\n", edit.Path, edit.Path, s.dmp.PatchToText(patches))
		}
	}

	if len(filePatches) == 0 {
		return nil, errs.NewPatchError(changeID, "generate", fmt.Errorf("no edit changes any file"))
	}

	now := time.Now()
	patch := &model.Patch{
		ChangeID:    changeID,
		Description: description,
		Status:      model.PatchStatusPending,
		Files:       filePatches,
		Diff:        display.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.patches.CreatePatch(patch); err != nil {
		return nil, err
	}

	s.logger.Info("generated patch %s: %d files", changeID, len(filePatches))

	if cfg.AutoApply {
		if err := s.applyPatch(patch); err != nil {
			return patch, err
		}
		s.logger.Info("auto-applied patch %s", changeID)
	}
	return patch, nil
}

// renderContextDiff writes a line-oriented diff of one edit, unchanged
// context lines included
func (s *patchService) renderContextDiff(display *strings.Builder, edit model.FileEdit) {
	fmt.Fprintf(display, "--- %s\n+++ %s\n", edit.Path, edit.Path)
	chars1, chars2, lineIndex := s.dmp.DiffLinesToChars(edit.Original, edit.Modified)
	for _, d := range s.dmp.DiffCharsToLines(s.dmp.DiffMain(chars1, chars2, false), lineIndex) {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintf(display, "%s%s\n", prefix, line)
		}
	}
}

// IsSafe dry-runs the patch against the current on-disk content without
// writing anything
func (s *patchService) IsSafe(changeID string) (bool, error) {
	patch, err := s.patches.GetPatchByChangeID(changeID)
	if err != nil {
		return false, err
	}
	if _, err := s.dryRun(patch); err != nil {
		s.logger.Warn("patch %s is not safe to apply: %v", changeID, err)
		return false, nil
	}
	return true, nil
}

// dryRun computes the post-apply content of every file, failing if any hunk
// does not apply cleanly
func (s *patchService) dryRun(patch *model.Patch) (map[string]string, error) {
	applied := make(map[string]string, len(patch.Files))
	for _, fp := range patch.Files {
		current, err := os.ReadFile(fp.Path)
		if err != nil {
			return nil, errs.NewPatchError(patch.ChangeID, "read", err)
		}
		parsed, err := s.dmp.PatchFromText(fp.Diff)
		if err != nil {
			return nil, errs.NewPatchError(patch.ChangeID, "parse", err)
		}
		next, results := s.dmp.PatchApply(parsed, string(current))
		for i, ok := range results {
			if !ok {
				return nil, errs.NewPatchError(patch.ChangeID, "apply",
					fmt.Errorf("hunk %d does not apply to %s", i, fp.Path))
			}
		}
		applied[fp.Path] = next
	}
	return applied, nil
}

// Apply backs up every touched file, validates the backups, then writes the
// patched content. On any failure the originals are restored from the
// validated backups and the patch is marked failed.
func (s *patchService) Apply(changeID string) error {
	patch, err := s.patches.GetPatchByChangeID(changeID)
	if err != nil {
		return err
	}
	return s.applyPatch(patch)
}

// applyPatch carries the backup-first apply protocol, shared by Apply and
// the auto-apply path in Generate
func (s *patchService) applyPatch(patch *model.Patch) error {
	changeID := patch.ChangeID
	if patch.Status != model.PatchStatusPending {
		return errs.NewPatchError(changeID, "apply",
			fmt.Errorf("patch is %s, only pending patches can be applied", patch.Status))
	}

	// Dry run first: nothing on disk changes until every hunk is known to
	// apply cleanly.
	applied, err := s.dryRun(patch)
	if err != nil {
		s.markFailed(changeID)
		return err
	}

	backups, err := s.backupFiles(changeID, patch.FilePaths())
	if err != nil {
		s.markFailed(changeID)
		return err
	}

	var written []string
	for _, fp := range patch.Files {
		if err := writePreservingMode(fp.Path, []byte(applied[fp.Path])); err != nil {
			s.logger.Error("apply of patch %s failed at %s, restoring %d files: %v",
				changeID, fp.Path, len(written)+1, err)
			if restoreErr := s.restore(backups); restoreErr != nil {
				s.logger.Error("restore after failed apply of %s also failed: %v", changeID, restoreErr)
			}
			s.markFailed(changeID)
			return errs.NewPatchError(changeID, "write", err)
		}
		written = append(written, fp.Path)
	}

	if err := s.patches.UpdatePatchStatus(changeID, model.PatchStatusApplied); err != nil {
		return err
	}
	patch.Status = model.PatchStatusApplied

	s.logger.Info("applied patch %s to %d files", changeID, len(written))
	return nil
}

// Rollback restores every file of a change from its backups. A missing
// backup set is a loud error, never a silent no-op. Backups are consumed:
// after a successful restore the bookkeeping entries and backup files are
// removed, so a repeated rollback fails with ErrNoBackup instead of
// overwriting newer content with stale copies.
func (s *patchService) Rollback(changeID string) error {
	backups, err := s.backups.GetBackupsByChangeID(changeID)
	if err != nil {
		return err
	}
	if err := s.restore(backups); err != nil {
		return errs.NewPatchError(changeID, "rollback", err)
	}
	if err := s.backups.DeleteBackupsByChangeID(changeID); err != nil {
		return errs.NewPatchError(changeID, "rollback", err)
	}
	if err := os.RemoveAll(filepath.Join(s.backupsDir, changeID)); err != nil {
		s.logger.Warn("failed to remove backup directory for %s: %v", changeID, err)
	}
	s.logger.Info("rolled back change %s: %d files restored", changeID, len(backups))
	return nil
}

// GetPatch loads one patch record
func (s *patchService) GetPatch(changeID string) (*model.Patch, error) {
	return s.patches.GetPatchByChangeID(changeID)
}

// ListPatches returns patch records, optionally filtered by status
func (s *patchService) ListPatches(status string, limit int) ([]*model.Patch, error) {
	return s.patches.ListPatches(status, limit)
}

// backupFiles copies every source file into the per-change backup directory
// and verifies each copy is byte-identical before returning
func (s *patchService) backupFiles(changeID string, paths []string) ([]*model.Backup, error) {
	dir := filepath.Join(s.backupsDir, changeID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errs.NewPatchError(changeID, "backup", err)
	}

	var backups []*model.Backup
	for i, sourcePath := range paths {
		source, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, errs.NewPatchError(changeID, "backup", err)
		}

		backupPath := filepath.Join(dir, fmt.Sprintf("%d_%s", i, filepath.Base(sourcePath)))
		if err := os.WriteFile(backupPath, source, 0644); err != nil {
			return nil, errs.NewPatchError(changeID, "backup", err)
		}

		// Validate the copy before anything touches the source
		copied, err := os.ReadFile(backupPath)
		if err != nil {
			return nil, errs.NewPatchError(changeID, "backup", err)
		}
		if !bytes.Equal(source, copied) {
			return nil, errs.NewPatchError(changeID, "backup",
				fmt.Errorf("backup of %s does not match source", sourcePath))
		}

		backup := &model.Backup{
			ChangeID:   changeID,
			SourcePath: sourcePath,
			BackupPath: backupPath,
			CreatedAt:  time.Now(),
		}
		if err := s.backups.CreateBackup(backup); err != nil {
			return nil, err
		}
		backups = append(backups, backup)
	}

	return backups, nil
}

// restore copies backups over their source files
func (s *patchService) restore(backups []*model.Backup) error {
	for _, b := range backups {
		content, err := os.ReadFile(b.BackupPath)
		if err != nil {
			return fmt.Errorf("failed to read backup %s: %w", b.BackupPath, err)
		}
		if err := writePreservingMode(b.SourcePath, content); err != nil {
			return fmt.Errorf("failed to restore %s: %w", b.SourcePath, err)
		}
	}
	return nil
}

// markFailed is best-effort, the caller already carries the real error
func (s *patchService) markFailed(changeID string) {
	if err := s.patches.UpdatePatchStatus(changeID, model.PatchStatusFailed); err != nil {
		s.logger.Warn("failed to mark patch %s as failed: %v", changeID, err)
	}
}

// writePreservingMode writes content keeping the file's existing permission
// bits when the file exists
func writePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, content, mode)
}
