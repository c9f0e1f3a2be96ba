package model

import "time"

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ModuleSelection names one module directory to analyze.
type ModuleSelection struct {
	Module         string `json:"module"`
	Root           string `json:"root"`
	AnalysisType   string `json:"analysis_type,omitempty"`
	CurrentVersion string `json:"current_version,omitempty"`
	TargetVersion  string `json:"target_version,omitempty"`
}

// ModuleFiles is the selector output for one module: the module root and its
// candidate files in lexical order.
type ModuleFiles struct {
	Module         string   `json:"module"`
	Root           string   `json:"root"`
	Files          []string `json:"files"`
	AnalysisType   string   `json:"analysis_type,omitempty"`
	CurrentVersion string   `json:"current_version,omitempty"`
	TargetVersion  string   `json:"target_version,omitempty"`
}

// BatchRun is the persisted state of one end-to-end analysis pass. It is
// checkpointed after every processed file so an interrupted run resumes from
// the last completed file.
type BatchRun struct {
	ID             string                     `json:"id"`
	Status         string                     `json:"status"`
	Modules        []ModuleFiles              `json:"modules"`
	CurrentModule  string                     `json:"current_module"`
	ChunkSize      int                        `json:"chunk_size"`
	ModuleIndex    int                        `json:"module_index"`
	FileIndex      int                        `json:"file_index"`
	FilesProcessed int                        `json:"files_processed"`
	TotalFiles     int                        `json:"total_files"`
	Results        map[string]*AnalysisResult `json:"results"`
	Errors         map[string]string          `json:"errors"`
	StartedAt      time.Time                  `json:"started_at"`
	CompletedAt    time.Time                  `json:"completed_at,omitempty"`
}

// Done reports whether every selected file has been visited
func (r *BatchRun) Done() bool {
	return r.FilesProcessed >= r.TotalFiles
}

// Percent returns the completion percentage, 100 for an empty selection
func (r *BatchRun) Percent() float64 {
	if r.TotalFiles == 0 {
		return 100
	}
	return float64(r.FilesProcessed) / float64(r.TotalFiles) * 100
}

// ProgressUpdate is the polling view of an active run.
type ProgressUpdate struct {
	RunID          string            `json:"run_id"`
	Status         string            `json:"status"`
	CurrentModule  string            `json:"current_module"`
	FilesProcessed int               `json:"files_processed"`
	TotalFiles     int               `json:"total_files"`
	Percent        float64           `json:"percent"`
	Errors         map[string]string `json:"errors,omitempty"`
}

// Run outcomes. Partial means the batch mechanism completed but individual
// files recorded errors; fatal means the mechanism itself aborted.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFatal   = "fatal"
)

// RunOutcome is the tagged finish result, so callers distinguish
// completed-with-errors from a hard failure without inspecting error types.
type RunOutcome struct {
	Kind       string      `json:"kind"`
	RunID      string      `json:"run_id"`
	ErrorCount int         `json:"error_count"`
	Summary    *RunSummary `json:"summary,omitempty"`
	Err        error       `json:"-"`
}

// RunReport is the persisted record of a completed run.
type RunReport struct {
	RunID       string            `json:"run_id"`
	Outcome     string            `json:"outcome"`
	Summary     *RunSummary       `json:"summary"`
	Errors      map[string]string `json:"errors,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}
