package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/service"
	"upgrade-analyzer/test/mocks"
)

func newPatchRouter(t *testing.T) (*gin.Engine, *mocks.MockPatchRepository, *mocks.MockBackupRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patches := &mocks.MockPatchRepository{}
	backups := &mocks.MockBackupRepository{}
	patchService := service.NewPatchService(patches, backups, filepath.Join(t.TempDir(), "backups"), &mocks.MockLogger{})
	h := NewPatchHandler(patchService, &mocks.MockLogger{})

	router := gin.New()
	api := router.Group("/upgrade-analyzer/api/v1")
	api.POST("/patches", h.GeneratePatch)
	api.GET("/patches/:changeId", h.GetPatch)
	api.POST("/patches/:changeId/rollback", h.RollbackPatch)
	return router, patches, backups
}

func TestGeneratePatch_OK(t *testing.T) {
	router, patches, _ := newPatchRouter(t)
	patches.On("CreatePatch", mock.AnythingOfType("*model.Patch")).Return(nil)

	path := filepath.Join(t.TempDir(), "a.php")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	body := fmt.Sprintf(`{"changeId":"chg-1","description":"d","edits":[{"path":%q,"original":"old\n","modified":"new\n"}]}`, path)
	w := doJSON(router, http.MethodPost, "/upgrade-analyzer/api/v1/patches", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chg-1", gjson.Get(w.Body.String(), "data.change_id").String())
	assert.Equal(t, "pending", gjson.Get(w.Body.String(), "data.status").String())
}

func TestGeneratePatch_InvalidBody(t *testing.T) {
	router, _, _ := newPatchRouter(t)

	w := doJSON(router, http.MethodPost, "/upgrade-analyzer/api/v1/patches", `{"description":"no change id"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPatch_NotFound(t *testing.T) {
	router, patches, _ := newPatchRouter(t)
	patches.On("GetPatchByChangeID", "nope").Return(nil, fmt.Errorf("patch not found: nope"))

	w := doJSON(router, http.MethodGet, "/upgrade-analyzer/api/v1/patches/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "upgrade-analyzer.patch_not_found", gjson.Get(w.Body.String(), "code").String())
}

func TestRollbackPatch_NoBackup(t *testing.T) {
	router, _, backups := newPatchRouter(t)
	backups.On("GetBackupsByChangeID", "chg-1").Return(nil, errs.ErrNoBackup)

	w := doJSON(router, http.MethodPost, "/upgrade-analyzer/api/v1/patches/chg-1/rollback", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "upgrade-analyzer.backup_not_found", gjson.Get(w.Body.String(), "code").String())
}
