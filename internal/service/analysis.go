// analysis.go - Batch analysis orchestration
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/llm"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/repository"
	"upgrade-analyzer/internal/utils"
	"upgrade-analyzer/pkg/logger"
)

// AnalysisService drives resumable batch analysis runs. Exactly one run may
// be active at a time; a second start is rejected rather than silently
// overwriting shared state. Run mutation is serialized: when both the batch
// runner job and the step endpoint drive the same run, they take turns.
type AnalysisService interface {
	StartRun(ctx context.Context, selections []model.ModuleSelection, chunkSize int) (*model.BatchRun, error)
	Resume(ctx context.Context, runID string) (*model.BatchRun, error)
	ProcessNextChunk(ctx context.Context, runID string) (*model.ProgressUpdate, error)
	Progress(runID string) (*model.ProgressUpdate, error)
	ActiveRunID() (string, error)
	Report() (*model.RunReport, error)
	Results() (map[string]*model.AnalysisResult, error)
}

type analysisService struct {
	selector   repository.SelectorInterface
	client     llm.AnalyzerClient
	store      repository.StateStoreInterface
	aggregator AggregateService
	logger     logger.Logger

	// mu serializes run mutation across concurrent drivers so two chunk
	// steps never load the same checkpoint
	mu sync.Mutex
}

// NewAnalysisService wires the orchestrator. All collaborators are
// constructor-injected; the dependency graph is acyclic.
func NewAnalysisService(
	selector repository.SelectorInterface,
	client llm.AnalyzerClient,
	store repository.StateStoreInterface,
	aggregator AggregateService,
	logger logger.Logger,
) AnalysisService {
	return &analysisService{
		selector:   selector,
		client:     client,
		store:      store,
		aggregator: aggregator,
		logger:     logger,
	}
}

// ActiveRunID returns the current run pointer, errs.ErrKeyNotFound when idle
func (s *analysisService) ActiveRunID() (string, error) {
	var runID string
	if err := s.store.Get(repository.KeyCurrentBatch, &runID); err != nil {
		return "", err
	}
	return runID, nil
}

// StartRun selects candidate files for every module, partitions them into
// chunks and persists the initial run state. A module whose directory cannot
// be read is recorded as an error and skipped; the run continues.
func (s *analysisService) StartRun(ctx context.Context, selections []model.ModuleSelection, chunkSize int) (*model.BatchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(selections) == 0 {
		return nil, errs.NewMissingParamError("modules")
	}
	if !s.client.Available() {
		return nil, errs.ErrUnavailable
	}

	if runID, err := s.ActiveRunID(); err == nil {
		if exists, _ := s.store.Has(repository.BatchRunKey(runID)); exists {
			return nil, errs.ErrRunActive
		}
		// Stale pointer with no run behind it, clear and continue
		if err := s.store.Delete(repository.KeyCurrentBatch); err != nil {
			return nil, fmt.Errorf("failed to clear stale run pointer: %w", err)
		}
	} else if !errors.Is(err, errs.ErrKeyNotFound) {
		return nil, err
	}

	if chunkSize <= 0 {
		chunkSize = 50
	}

	run := &model.BatchRun{
		ID:        utils.GenerateUUID(),
		Status:    model.RunStatusRunning,
		ChunkSize: chunkSize,
		Results:   make(map[string]*model.AnalysisResult),
		Errors:    make(map[string]string),
		StartedAt: time.Now(),
	}

	for _, selection := range selections {
		moduleFiles, err := s.selector.SelectFiles(selection.Root, selection.Module)
		if err != nil {
			var scanErr *errs.ScanError
			if errors.As(err, &scanErr) {
				s.logger.Warn("skipping module %s: %v", selection.Module, err)
				run.Errors["module:"+selection.Module] = err.Error()
				continue
			}
			return nil, err
		}
		moduleFiles.AnalysisType = selection.AnalysisType
		moduleFiles.CurrentVersion = selection.CurrentVersion
		moduleFiles.TargetVersion = selection.TargetVersion
		run.Modules = append(run.Modules, *moduleFiles)
		run.TotalFiles += len(moduleFiles.Files)
	}

	if len(run.Modules) > 0 {
		run.CurrentModule = run.Modules[0].Module
	}

	if err := s.checkpoint(run); err != nil {
		return nil, err
	}
	if err := s.store.Set(repository.KeyCurrentBatch, run.ID); err != nil {
		return nil, fmt.Errorf("failed to set current run pointer: %w", err)
	}

	s.logger.Info("batch run %s started: %d modules, %d files, chunk size %d",
		run.ID, len(run.Modules), run.TotalFiles, run.ChunkSize)

	return run, nil
}

// Resume reloads a previously persisted run so processing continues from
// the last completed file
func (s *analysisService) Resume(ctx context.Context, runID string) (*model.BatchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.loadRun(runID)
	if err != nil {
		if errors.Is(err, errs.ErrKeyNotFound) {
			return nil, errs.ErrNothingToResume
		}
		return nil, err
	}
	if run.TotalFiles == 0 && len(run.Modules) == 0 {
		return nil, errs.ErrNothingToResume
	}

	if err := s.store.Set(repository.KeyCurrentBatch, run.ID); err != nil {
		return nil, fmt.Errorf("failed to set current run pointer: %w", err)
	}

	s.logger.Info("batch run %s resumed at %d/%d files", run.ID, run.FilesProcessed, run.TotalFiles)
	return run, nil
}

// ProcessNextChunk analyzes up to one chunk of files, strictly sequentially,
// checkpointing the full run state after every file. Per-file failures are
// recorded and never abort the batch; only a failure to persist progress is
// fatal to the run. A second driver calling in while a chunk is in flight
// blocks until the chunk completes, then sees the fresh checkpoint.
func (s *analysisService) ProcessNextChunk(ctx context.Context, runID string) (*model.ProgressUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.loadRun(runID)
	if err != nil {
		return nil, err
	}
	if run.Done() {
		return s.finalize(run)
	}

	processed := 0
	for processed < run.ChunkSize && !run.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		module, relPath, ok := s.currentFile(run)
		if !ok {
			break
		}

		s.analyzeFile(ctx, run, module, relPath)

		run.FilesProcessed++
		run.FileIndex++
		s.advance(run)
		processed++

		if err := s.checkpoint(run); err != nil {
			return nil, err
		}
	}

	if run.Done() {
		return s.finalize(run)
	}

	return s.progressOf(run), nil
}

// currentFile returns the module and file at the run cursor
func (s *analysisService) currentFile(run *model.BatchRun) (*model.ModuleFiles, string, bool) {
	for run.ModuleIndex < len(run.Modules) {
		module := &run.Modules[run.ModuleIndex]
		if run.FileIndex < len(module.Files) {
			return module, module.Files[run.FileIndex], true
		}
		run.ModuleIndex++
		run.FileIndex = 0
	}
	return nil, "", false
}

// advance moves the cursor past exhausted modules and updates CurrentModule
func (s *analysisService) advance(run *model.BatchRun) {
	for run.ModuleIndex < len(run.Modules) && run.FileIndex >= len(run.Modules[run.ModuleIndex].Files) {
		run.ModuleIndex++
		run.FileIndex = 0
	}
	if run.ModuleIndex < len(run.Modules) {
		run.CurrentModule = run.Modules[run.ModuleIndex].Module
	}
}

// analyzeFile runs one file through the AI client, recording either the
// result or the error against the run
func (s *analysisService) analyzeFile(ctx context.Context, run *model.BatchRun, module *model.ModuleFiles, relPath string) {
	resultKey := module.Module + "/" + relPath

	sourceText, err := s.selector.ReadSource(module.Root, relPath)
	if err != nil {
		s.logger.Warn("failed to read %s: %v", resultKey, err)
		run.Errors[resultKey] = err.Error()
		return
	}

	analysisType := module.AnalysisType
	if analysisType == "" {
		analysisType = model.AnalysisTypeGeneral
	}

	result, err := s.client.Analyze(ctx, sourceText, model.AnalysisContext{
		FilePath:       relPath,
		Module:         module.Module,
		CurrentVersion: module.CurrentVersion,
		TargetVersion:  module.TargetVersion,
		AnalysisType:   analysisType,
	})
	if err != nil {
		s.logger.Warn("analysis failed for %s: %v", resultKey, err)
		run.Errors[resultKey] = err.Error()
		return
	}

	// A re-analysis of the same file supersedes the previous result
	run.Results[resultKey] = result
}

// finalize aggregates the completed run, persists the report under the
// well-known keys and clears the transient run state
func (s *analysisService) finalize(run *model.BatchRun) (*model.ProgressUpdate, error) {
	summary := s.aggregator.Aggregate(run.Results)

	outcome := model.OutcomeSuccess
	if len(run.Errors) > 0 {
		outcome = model.OutcomePartial
	}

	run.Status = model.RunStatusCompleted
	run.CompletedAt = time.Now()

	report := &model.RunReport{
		RunID:       run.ID,
		Outcome:     outcome,
		Summary:     summary,
		Errors:      run.Errors,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}

	if err := s.store.Set(repository.KeyAnalysisResults, run.Results); err != nil {
		return nil, fmt.Errorf("failed to persist analysis results: %w", err)
	}
	if err := s.store.Set(repository.KeyAnalysisSummary, report); err != nil {
		return nil, fmt.Errorf("failed to persist run report: %w", err)
	}
	if err := s.store.Delete(repository.BatchRunKey(run.ID)); err != nil {
		return nil, fmt.Errorf("failed to clear run state: %w", err)
	}
	if err := s.store.Delete(repository.KeyCurrentBatch); err != nil {
		return nil, fmt.Errorf("failed to clear current run pointer: %w", err)
	}

	s.logger.Info("batch run %s completed: outcome %s, %d files, %d errors",
		run.ID, outcome, run.FilesProcessed, len(run.Errors))

	update := s.progressOf(run)
	update.Status = model.RunStatusCompleted
	return update, nil
}

// Progress returns the polling view of a run; an empty id means the active run
func (s *analysisService) Progress(runID string) (*model.ProgressUpdate, error) {
	if runID == "" {
		active, err := s.ActiveRunID()
		if err != nil {
			return nil, err
		}
		runID = active
	}

	run, err := s.loadRun(runID)
	if err != nil {
		return nil, err
	}
	return s.progressOf(run), nil
}

// Report returns the persisted report of the last completed run
func (s *analysisService) Report() (*model.RunReport, error) {
	var report model.RunReport
	if err := s.store.Get(repository.KeyAnalysisSummary, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Results returns the persisted result map of the last completed run
func (s *analysisService) Results() (map[string]*model.AnalysisResult, error) {
	results := make(map[string]*model.AnalysisResult)
	if err := s.store.Get(repository.KeyAnalysisResults, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *analysisService) loadRun(runID string) (*model.BatchRun, error) {
	if runID == "" {
		return nil, errs.NewMissingParamError("runId")
	}
	var run model.BatchRun
	if err := s.store.Get(repository.BatchRunKey(runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *analysisService) checkpoint(run *model.BatchRun) error {
	if err := s.store.Set(repository.BatchRunKey(run.ID), run); err != nil {
		return fmt.Errorf("failed to checkpoint run %s: %w", run.ID, err)
	}
	return nil
}

func (s *analysisService) progressOf(run *model.BatchRun) *model.ProgressUpdate {
	return &model.ProgressUpdate{
		RunID:          run.ID,
		Status:         run.Status,
		CurrentModule:  run.CurrentModule,
		FilesProcessed: run.FilesProcessed,
		TotalFiles:     run.TotalFiles,
		Percent:        run.Percent(),
		Errors:         run.Errors,
	}
}
