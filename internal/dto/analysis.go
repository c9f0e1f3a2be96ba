package dto

// ModuleRequest names one module directory to analyze.
type ModuleRequest struct {
	Module         string `json:"module" binding:"required"`
	Root           string `json:"root" binding:"required"`
	AnalysisType   string `json:"analysisType"`
	CurrentVersion string `json:"currentVersion"`
	TargetVersion  string `json:"targetVersion"`
}

// StartRunRequest starts a batch analysis run.
type StartRunRequest struct {
	Modules   []ModuleRequest `json:"modules" binding:"required"`
	ChunkSize int             `json:"chunkSize"`
}

// ResumeRunRequest resumes an interrupted run.
type ResumeRunRequest struct {
	RunID string `json:"runId" binding:"required"`
}

// RunStartedResponse is the payload returned by start and resume.
type RunStartedResponse struct {
	RunID      string `json:"runId"`
	Status     string `json:"status"`
	TotalFiles int    `json:"totalFiles"`
	ChunkSize  int    `json:"chunkSize"`
}
