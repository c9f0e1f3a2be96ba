package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upgrade-analyzer/internal/config"
	"upgrade-analyzer/internal/database"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/test/mocks"
)

func newTestDB(t *testing.T) database.DatabaseManager {
	t.Helper()
	dbConfig := config.DefaultDatabaseConfig(t.TempDir())
	manager := database.NewSQLiteManager(dbConfig, &mocks.MockLogger{})
	require.NoError(t, manager.Initialize())
	t.Cleanup(func() { manager.Close() })
	return manager
}

func pendingPatch(changeID string) *model.Patch {
	now := time.Now()
	return &model.Patch{
		ChangeID:    changeID,
		Description: "test change",
		Status:      model.PatchStatusPending,
		Files:       []model.FilePatch{{Path: "/mod/a.php", Diff: "@@ -1 +1 @@"}},
		Diff:        "--- /mod/a.php\n+++ /mod/a.php\n",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPatchRepository_CreateAndGet(t *testing.T) {
	repo := NewPatchRepository(newTestDB(t), &mocks.MockLogger{})

	patch := pendingPatch("chg-1")
	require.NoError(t, repo.CreatePatch(patch))
	assert.NotZero(t, patch.ID)

	loaded, err := repo.GetPatchByChangeID("chg-1")
	require.NoError(t, err)
	assert.Equal(t, "chg-1", loaded.ChangeID)
	assert.Equal(t, model.PatchStatusPending, loaded.Status)
	require.Len(t, loaded.Files, 1)
	assert.Equal(t, "/mod/a.php", loaded.Files[0].Path)

	_, err = repo.GetPatchByChangeID("missing")
	assert.Error(t, err)
}

func TestPatchRepository_List(t *testing.T) {
	repo := NewPatchRepository(newTestDB(t), &mocks.MockLogger{})

	require.NoError(t, repo.CreatePatch(pendingPatch("chg-1")))
	require.NoError(t, repo.CreatePatch(pendingPatch("chg-2")))
	require.NoError(t, repo.UpdatePatchStatus("chg-2", model.PatchStatusApplied))

	all, err := repo.ListPatches("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := repo.ListPatches(model.PatchStatusPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "chg-1", pending[0].ChangeID)

	limited, err := repo.ListPatches("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPatchRepository_TerminalStatusIsFinal(t *testing.T) {
	repo := NewPatchRepository(newTestDB(t), &mocks.MockLogger{})

	require.NoError(t, repo.CreatePatch(pendingPatch("chg-1")))
	require.NoError(t, repo.UpdatePatchStatus("chg-1", model.PatchStatusApplied))

	// applied is terminal, no further transitions
	err := repo.UpdatePatchStatus("chg-1", model.PatchStatusFailed)
	assert.Error(t, err)

	loaded, err := repo.GetPatchByChangeID("chg-1")
	require.NoError(t, err)
	assert.Equal(t, model.PatchStatusApplied, loaded.Status)
}

func TestBackupRepository_CreateAndGet(t *testing.T) {
	repo := NewBackupRepository(newTestDB(t), &mocks.MockLogger{})

	backup := &model.Backup{
		ChangeID:   "chg-1",
		SourcePath: "/mod/a.php",
		BackupPath: "/backups/chg-1/0_a.php",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateBackup(backup))
	assert.NotZero(t, backup.ID)

	backups, err := repo.GetBackupsByChangeID("chg-1")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "/mod/a.php", backups[0].SourcePath)
}

func TestBackupRepository_MissingBackupIsErrNoBackup(t *testing.T) {
	repo := NewBackupRepository(newTestDB(t), &mocks.MockLogger{})

	_, err := repo.GetBackupsByChangeID("nope")
	assert.ErrorIs(t, err, errs.ErrNoBackup)
}

func TestBackupRepository_Retention(t *testing.T) {
	repo := NewBackupRepository(newTestDB(t), &mocks.MockLogger{})

	old := &model.Backup{
		ChangeID:   "chg-old",
		SourcePath: "/mod/a.php",
		BackupPath: "/backups/chg-old/0_a.php",
		CreatedAt:  time.Now().AddDate(0, 0, -10),
	}
	fresh := &model.Backup{
		ChangeID:   "chg-new",
		SourcePath: "/mod/b.php",
		BackupPath: "/backups/chg-new/0_b.php",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateBackup(old))
	require.NoError(t, repo.CreateBackup(fresh))

	expired, err := repo.GetBackupsOlderThan(time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "chg-old", expired[0].ChangeID)

	require.NoError(t, repo.DeleteBackup(expired[0].ID))
	expired, err = repo.GetBackupsOlderThan(time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestBackupRepository_DeleteByChangeID(t *testing.T) {
	repo := NewBackupRepository(newTestDB(t), &mocks.MockLogger{})

	require.NoError(t, repo.CreateBackup(&model.Backup{
		ChangeID: "chg-1", SourcePath: "/a", BackupPath: "/b", CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.DeleteBackupsByChangeID("chg-1"))

	_, err := repo.GetBackupsByChangeID("chg-1")
	assert.ErrorIs(t, err, errs.ErrNoBackup)
}
