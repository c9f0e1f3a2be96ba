// internal/handler/patches.go - Patch lifecycle endpoints
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"upgrade-analyzer/internal/dto"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/service"
	"upgrade-analyzer/internal/utils"
	"upgrade-analyzer/pkg/logger"
)

// PatchHandler exposes patch generation, apply and rollback over REST
type PatchHandler struct {
	patchService service.PatchService
	logger       logger.Logger
}

// NewPatchHandler creates a new patch handler
func NewPatchHandler(patchService service.PatchService, logger logger.Logger) *PatchHandler {
	return &PatchHandler{
		patchService: patchService,
		logger:       logger,
	}
}

// GeneratePatch creates a pending patch from proposed edits
func (h *PatchHandler) GeneratePatch(c *gin.Context) {
	var req dto.GeneratePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		utils.BadRequest(c, "invalid request format")
		return
	}

	edits := make([]model.FileEdit, 0, len(req.Edits))
	for _, e := range req.Edits {
		edits = append(edits, model.FileEdit{
			Path:     e.Path,
			Original: e.Original,
			Modified: e.Modified,
		})
	}

	patch, err := h.patchService.Generate(req.ChangeID, req.Description, edits)
	if err != nil {
		h.logger.Error("failed to generate patch %s: %v", req.ChangeID, err)
		utils.BadRequest(c, err.Error())
		return
	}

	utils.Success(c, patch)
}

// CheckPatch dry-runs a patch against the current files
func (h *PatchHandler) CheckPatch(c *gin.Context) {
	changeID := c.Param("changeId")

	safe, err := h.patchService.IsSafe(changeID)
	if err != nil {
		utils.FailWithCode(c, errs.CodePatchNotFound, err.Error(), http.StatusNotFound)
		return
	}

	utils.Success(c, dto.PatchSafetyResponse{ChangeID: changeID, Safe: safe})
}

// ApplyPatch applies a pending patch with backup and restore-on-failure
func (h *PatchHandler) ApplyPatch(c *gin.Context) {
	changeID := c.Param("changeId")

	if err := h.patchService.Apply(changeID); err != nil {
		h.logger.Error("failed to apply patch %s: %v", changeID, err)
		var patchErr *errs.PatchError
		if errors.As(err, &patchErr) {
			utils.FailWithCode(c, errs.CodeBadRequest, err.Error(), http.StatusConflict)
			return
		}
		utils.FailWithCode(c, errs.CodePatchNotFound, err.Error(), http.StatusNotFound)
		return
	}

	utils.Success(c, gin.H{"changeId": changeID, "status": model.PatchStatusApplied})
}

// RollbackPatch restores the files of a change from their backups
func (h *PatchHandler) RollbackPatch(c *gin.Context) {
	changeID := c.Param("changeId")

	if err := h.patchService.Rollback(changeID); err != nil {
		if errors.Is(err, errs.ErrNoBackup) {
			utils.FailWithCode(c, errs.CodeBackupNotFound, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to roll back change %s: %v", changeID, err)
		utils.FailWithCode(c, errs.CodeInternalServerError, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.Success(c, gin.H{"changeId": changeID, "restored": true})
}

// GetPatch returns one patch record
func (h *PatchHandler) GetPatch(c *gin.Context) {
	changeID := c.Param("changeId")

	patch, err := h.patchService.GetPatch(changeID)
	if err != nil {
		utils.FailWithCode(c, errs.CodePatchNotFound, err.Error(), http.StatusNotFound)
		return
	}

	utils.Success(c, patch)
}

// ListPatches returns patch records, optionally filtered by status
func (h *PatchHandler) ListPatches(c *gin.Context) {
	status := c.Query("status")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	patches, err := h.patchService.ListPatches(status, limit)
	if err != nil {
		h.logger.Error("failed to list patches: %v", err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to list patches", http.StatusInternalServerError)
		return
	}

	utils.Success(c, patches)
}
