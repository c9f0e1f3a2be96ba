// internal/handler/analysis.go - RESTful API handler using Gin framework
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"upgrade-analyzer/internal/dto"
	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/service"
	"upgrade-analyzer/internal/utils"
	"upgrade-analyzer/pkg/logger"
)

// AnalysisHandler exposes batch analysis runs over REST
type AnalysisHandler struct {
	analysisService service.AnalysisService
	logger          logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService service.AnalysisService, logger logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// StartRun starts a batch analysis run for the requested modules
func (h *AnalysisHandler) StartRun(c *gin.Context) {
	var req dto.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		utils.BadRequest(c, "invalid request format")
		return
	}

	selections := make([]model.ModuleSelection, 0, len(req.Modules))
	for _, m := range req.Modules {
		selections = append(selections, model.ModuleSelection{
			Module:         m.Module,
			Root:           m.Root,
			AnalysisType:   m.AnalysisType,
			CurrentVersion: m.CurrentVersion,
			TargetVersion:  m.TargetVersion,
		})
	}

	h.logger.Info("start run request: %d modules, chunk size %d", len(selections), req.ChunkSize)

	run, err := h.analysisService.StartRun(c.Request.Context(), selections, req.ChunkSize)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrRunActive):
			utils.Conflict(c, errs.CodeRunActive, err.Error())
		case errors.Is(err, errs.ErrUnavailable):
			utils.FailWithCode(c, errs.CodeAnalysisUnavailable, err.Error(), http.StatusServiceUnavailable)
		default:
			h.logger.Error("failed to start run: %v", err)
			utils.FailWithCode(c, errs.CodeInternalServerError, "failed to start run", http.StatusInternalServerError)
		}
		return
	}

	utils.Success(c, dto.RunStartedResponse{
		RunID:      run.ID,
		Status:     run.Status,
		TotalFiles: run.TotalFiles,
		ChunkSize:  run.ChunkSize,
	})
}

// ResumeRun resumes an interrupted run from its last checkpoint
func (h *AnalysisHandler) ResumeRun(c *gin.Context) {
	var req dto.ResumeRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request format: %v", err)
		utils.BadRequest(c, "invalid request format")
		return
	}

	run, err := h.analysisService.Resume(c.Request.Context(), req.RunID)
	if err != nil {
		if errors.Is(err, errs.ErrNothingToResume) {
			utils.FailWithCode(c, errs.CodeNothingToResume, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resume run %s: %v", req.RunID, err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to resume run", http.StatusInternalServerError)
		return
	}

	utils.Success(c, dto.RunStartedResponse{
		RunID:      run.ID,
		Status:     run.Status,
		TotalFiles: run.TotalFiles,
		ChunkSize:  run.ChunkSize,
	})
}

// StepRun processes the next chunk of the active run on demand. The batch
// runner job steps automatically; this endpoint lets a client drive the run
// at its own pace instead.
func (h *AnalysisHandler) StepRun(c *gin.Context) {
	runID, err := h.analysisService.ActiveRunID()
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			utils.FailWithCode(c, errs.CodeRunNotFound, "no active run", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to read active run pointer: %v", err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to read active run", http.StatusInternalServerError)
		return
	}

	progress, err := h.analysisService.ProcessNextChunk(c.Request.Context(), runID)
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			utils.FailWithCode(c, errs.CodeRunNotFound, "no active run", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to process chunk for run %s: %v", runID, err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to process chunk", http.StatusInternalServerError)
		return
	}

	utils.Success(c, progress)
}

// GetProgress returns the polling view of a run. Without a runId query param
// it reports the active run.
func (h *AnalysisHandler) GetProgress(c *gin.Context) {
	runID := c.Query("runId")

	progress, err := h.analysisService.Progress(runID)
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			utils.FailWithCode(c, errs.CodeRunNotFound, "no such run", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get progress: %v", err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to get progress", http.StatusInternalServerError)
		return
	}

	utils.Success(c, progress)
}

// GetReport returns the report of the last completed run
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	report, err := h.analysisService.Report()
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			utils.FailWithCode(c, errs.CodeRunNotFound, "no completed run", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get report: %v", err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to get report", http.StatusInternalServerError)
		return
	}

	utils.Success(c, report)
}

// GetResults returns the per-file results of the last completed run
func (h *AnalysisHandler) GetResults(c *gin.Context) {
	results, err := h.analysisService.Results()
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			utils.FailWithCode(c, errs.CodeRunNotFound, "no completed run", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get results: %v", err)
		utils.FailWithCode(c, errs.CodeInternalServerError, "failed to get results", http.StatusInternalServerError)
		return
	}

	utils.Success(c, results)
}
