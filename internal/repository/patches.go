// patches.go - Patch and backup bookkeeping
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"upgrade-analyzer/internal/database"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/pkg/logger"
)

// PatchRepository is the data access layer for patch records
type PatchRepository interface {
	CreatePatch(patch *model.Patch) error
	GetPatchByChangeID(changeID string) (*model.Patch, error)
	ListPatches(status string, limit int) ([]*model.Patch, error)
	UpdatePatchStatus(changeID, status string) error
}

// BackupRepository is the data access layer for backup records
type BackupRepository interface {
	CreateBackup(backup *model.Backup) error
	GetBackupsByChangeID(changeID string) ([]*model.Backup, error)
	DeleteBackupsByChangeID(changeID string) error
	GetBackupsOlderThan(cutoff time.Time) ([]*model.Backup, error)
	DeleteBackup(id int64) error
}

type patchRepository struct {
	db     database.DatabaseManager
	logger logger.Logger
}

// NewPatchRepository creates a patch repository
func NewPatchRepository(db database.DatabaseManager, logger logger.Logger) PatchRepository {
	return &patchRepository{db: db, logger: logger}
}

// CreatePatch inserts a pending patch record
func (r *patchRepository) CreatePatch(patch *model.Patch) error {
	files, err := json.Marshal(patch.Files)
	if err != nil {
		return fmt.Errorf("failed to encode patch file list: %w", err)
	}

	query := `
		INSERT INTO patches (change_id, description, status, files, diff, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.GetDB().Exec(query,
		patch.ChangeID,
		patch.Description,
		patch.Status,
		string(files),
		patch.Diff,
		patch.CreatedAt,
		patch.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create patch: %v", err)
		return fmt.Errorf("failed to create patch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	patch.ID = id
	return nil
}

// GetPatchByChangeID loads one patch record
func (r *patchRepository) GetPatchByChangeID(changeID string) (*model.Patch, error) {
	query := `
		SELECT id, change_id, description, status, files, diff, created_at, updated_at
		FROM patches
		WHERE change_id = ?
	`

	row := r.db.GetDB().QueryRow(query, changeID)

	var patch model.Patch
	var files string
	err := row.Scan(
		&patch.ID,
		&patch.ChangeID,
		&patch.Description,
		&patch.Status,
		&files,
		&patch.Diff,
		&patch.CreatedAt,
		&patch.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patch not found: %s", changeID)
		}
		r.logger.Error("failed to get patch by change id: %v", err)
		return nil, fmt.Errorf("failed to get patch by change id: %w", err)
	}

	if err := json.Unmarshal([]byte(files), &patch.Files); err != nil {
		return nil, fmt.Errorf("failed to decode patch file list: %w", err)
	}

	return &patch, nil
}

// ListPatches returns patch records, optionally filtered by status
func (r *patchRepository) ListPatches(status string, limit int) ([]*model.Patch, error) {
	query := `
		SELECT id, change_id, description, status, files, diff, created_at, updated_at
		FROM patches
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.GetDB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patches: %w", err)
	}
	defer rows.Close()

	var patches []*model.Patch
	for rows.Next() {
		var patch model.Patch
		var files string
		if err := rows.Scan(
			&patch.ID,
			&patch.ChangeID,
			&patch.Description,
			&patch.Status,
			&files,
			&patch.Diff,
			&patch.CreatedAt,
			&patch.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patch row: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &patch.Files); err != nil {
			return nil, fmt.Errorf("failed to decode patch file list: %w", err)
		}
		patches = append(patches, &patch)
	}

	return patches, rows.Err()
}

// UpdatePatchStatus transitions a patch. Applied and failed are terminal, a
// patch never leaves them.
func (r *patchRepository) UpdatePatchStatus(changeID, status string) error {
	query := `
		UPDATE patches SET status = ?, updated_at = ?
		WHERE change_id = ? AND status = ?
	`

	result, err := r.db.GetDB().Exec(query, status, time.Now(), changeID, model.PatchStatusPending)
	if err != nil {
		r.logger.Error("failed to update patch status: %v", err)
		return fmt.Errorf("failed to update patch status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("patch %s is not pending, status not changed", changeID)
	}

	return nil
}

type backupRepository struct {
	db     database.DatabaseManager
	logger logger.Logger
}

// NewBackupRepository creates a backup repository
func NewBackupRepository(db database.DatabaseManager, logger logger.Logger) BackupRepository {
	return &backupRepository{db: db, logger: logger}
}

// CreateBackup inserts a backup record
func (r *backupRepository) CreateBackup(backup *model.Backup) error {
	query := `
		INSERT INTO backups (change_id, source_path, backup_path, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.GetDB().Exec(query,
		backup.ChangeID,
		backup.SourcePath,
		backup.BackupPath,
		backup.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create backup record: %v", err)
		return fmt.Errorf("failed to create backup record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	backup.ID = id
	return nil
}

// GetBackupsByChangeID returns the backups registered for a change id
func (r *backupRepository) GetBackupsByChangeID(changeID string) ([]*model.Backup, error) {
	query := `
		SELECT id, change_id, source_path, backup_path, created_at
		FROM backups
		WHERE change_id = ?
		ORDER BY id
	`

	rows, err := r.db.GetDB().Query(query, changeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query backups: %w", err)
	}
	defer rows.Close()

	var backups []*model.Backup
	for rows.Next() {
		var b model.Backup
		if err := rows.Scan(&b.ID, &b.ChangeID, &b.SourcePath, &b.BackupPath, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan backup row: %w", err)
		}
		backups = append(backups, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(backups) == 0 {
		return nil, errs.ErrNoBackup
	}
	return backups, nil
}

// DeleteBackupsByChangeID removes the bookkeeping entries for a change id
func (r *backupRepository) DeleteBackupsByChangeID(changeID string) error {
	if _, err := r.db.GetDB().Exec("DELETE FROM backups WHERE change_id = ?", changeID); err != nil {
		return fmt.Errorf("failed to delete backups for change %s: %w", changeID, err)
	}
	return nil
}

// GetBackupsOlderThan returns backups past the retention cutoff
func (r *backupRepository) GetBackupsOlderThan(cutoff time.Time) ([]*model.Backup, error) {
	query := `
		SELECT id, change_id, source_path, backup_path, created_at
		FROM backups
		WHERE created_at < ?
	`

	rows, err := r.db.GetDB().Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired backups: %w", err)
	}
	defer rows.Close()

	var backups []*model.Backup
	for rows.Next() {
		var b model.Backup
		if err := rows.Scan(&b.ID, &b.ChangeID, &b.SourcePath, &b.BackupPath, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan backup row: %w", err)
		}
		backups = append(backups, &b)
	}

	return backups, rows.Err()
}

// DeleteBackup removes one backup record
func (r *backupRepository) DeleteBackup(id int64) error {
	if _, err := r.db.GetDB().Exec("DELETE FROM backups WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete backup %d: %w", id, err)
	}
	return nil
}
