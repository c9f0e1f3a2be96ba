package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/test/mocks"
)

func newTestStore(t *testing.T) *StateStore {
	t.Helper()
	store, err := NewStateStore(t.TempDir(), &mocks.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStateStore_SetGetDelete(t *testing.T) {
	store := newTestStore(t)

	run := &model.BatchRun{ID: "run-1", Status: model.RunStatusRunning, TotalFiles: 3}
	require.NoError(t, store.Set(BatchRunKey(run.ID), run))

	var loaded model.BatchRun
	require.NoError(t, store.Get(BatchRunKey("run-1"), &loaded))
	assert.Equal(t, "run-1", loaded.ID)
	assert.Equal(t, model.RunStatusRunning, loaded.Status)
	assert.Equal(t, 3, loaded.TotalFiles)

	require.NoError(t, store.Delete(BatchRunKey("run-1")))
	err := store.Get(BatchRunKey("run-1"), &loaded)
	assert.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestStateStore_GetMissingKey(t *testing.T) {
	store := newTestStore(t)

	var out string
	err := store.Get("no.such.key", &out)
	assert.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestStateStore_DeleteMissingKeyIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete("no.such.key"))
}

func TestStateStore_Has(t *testing.T) {
	store := newTestStore(t)

	exists, err := store.Has(KeyCurrentBatch)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(KeyCurrentBatch, "run-1"))
	exists, err = store.Has(KeyCurrentBatch)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStateStore_KeysByPrefix(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(BatchRunKey("a"), 1))
	require.NoError(t, store.Set(BatchRunKey("b"), 2))
	require.NoError(t, store.Set(KeyAnalysisSummary, "x"))

	keys, err := store.Keys(KeyBatchPrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{BatchRunKey("a"), BatchRunKey("b")}, keys)
}

func TestStateStore_ClosedStoreErrors(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	var out string
	assert.Error(t, store.Get("k", &out))
	assert.Error(t, store.Set("k", "v"))
	assert.NoError(t, store.Close()) // double close is a no-op
}
