package server

import (
	"github.com/gin-gonic/gin"

	"upgrade-analyzer/internal/handler"
)

// SetupAnalysisRoutes registers the batch analysis endpoints
func SetupAnalysisRoutes(router *gin.Engine, analysisHandler *handler.AnalysisHandler) {
	api := router.Group("/upgrade-analyzer/api/v1")
	{
		api.POST("/runs", analysisHandler.StartRun)
		api.POST("/runs/resume", analysisHandler.ResumeRun)
		api.POST("/runs/step", analysisHandler.StepRun)
		api.GET("/runs/progress", analysisHandler.GetProgress)
		api.GET("/report", analysisHandler.GetReport)
		api.GET("/results", analysisHandler.GetResults)
	}
}

// SetupPatchRoutes registers the patch lifecycle endpoints
func SetupPatchRoutes(router *gin.Engine, patchHandler *handler.PatchHandler) {
	api := router.Group("/upgrade-analyzer/api/v1")
	{
		api.POST("/patches", patchHandler.GeneratePatch)
		api.GET("/patches", patchHandler.ListPatches)
		api.GET("/patches/:changeId", patchHandler.GetPatch)
		api.GET("/patches/:changeId/safe", patchHandler.CheckPatch)
		api.POST("/patches/:changeId/apply", patchHandler.ApplyPatch)
		api.POST("/patches/:changeId/rollback", patchHandler.RollbackPatch)
	}
}
