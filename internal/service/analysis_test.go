package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upgrade-analyzer/internal/errs"
	"upgrade-analyzer/internal/model"
	"upgrade-analyzer/internal/repository"
	"upgrade-analyzer/test/mocks"
)

type orchestratorFixture struct {
	selector *mocks.MockSelectorInterface
	client   *mocks.MockAnalyzerClient
	store    *repository.StateStore
	service  AnalysisService
}

func newOrchestratorFixture(t *testing.T, ctrl *gomock.Controller) *orchestratorFixture {
	t.Helper()

	store, err := repository.NewStateStore(t.TempDir(), &mocks.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	selector := mocks.NewMockSelectorInterface(ctrl)
	client := mocks.NewMockAnalyzerClient(ctrl)

	return &orchestratorFixture{
		selector: selector,
		client:   client,
		store:    store,
		service:  NewAnalysisService(selector, client, store, NewAggregateService(), &mocks.MockLogger{}),
	}
}

func resultFor(module, file string) *model.AnalysisResult {
	return &model.AnalysisResult{
		FilePath: file,
		Module:   module,
		Issues:   []model.Issue{{Type: model.IssueTypeDeprecation, Priority: model.PriorityCritical}},
	}
}

func TestStartRun_RejectsSecondActiveRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true).Times(2)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php"}}, nil)

	selections := []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}
	_, err := f.service.StartRun(context.Background(), selections, 2)
	require.NoError(t, err)

	_, err = f.service.StartRun(context.Background(), selections, 2)
	assert.ErrorIs(t, err, errs.ErrRunActive)
}

func TestStartRun_UnavailableClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(false)

	_, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 2)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestStartRun_ScanErrorSkipsModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/missing", "broken").
		Return(nil, errs.NewScanError("broken", "/missing", errors.New("no such directory")))
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php"}}, nil)

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{
		{Module: "broken", Root: "/missing"},
		{Module: "alpha", Root: "/mod"},
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, run.TotalFiles)
	assert.Len(t, run.Modules, 1)
	assert.Contains(t, run.Errors, "module:broken")
}

func TestProcessNextChunk_ThreeFilesChunkTwo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php", "b.php", "c.php"}}, nil)

	f.selector.EXPECT().ReadSource("/mod", gomock.Any()).Return("<?php\n", nil).Times(3)
	f.client.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, actx model.AnalysisContext) (*model.AnalysisResult, error) {
			return resultFor(actx.Module, actx.FilePath), nil
		}).Times(3)

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, run.TotalFiles)

	// First chunk processes two files
	progress, err := f.service.ProcessNextChunk(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.FilesProcessed)
	assert.Equal(t, 3, progress.TotalFiles)
	assert.Equal(t, model.RunStatusRunning, progress.Status)

	// Second chunk finishes the run
	progress, err = f.service.ProcessNextChunk(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.FilesProcessed)
	assert.Equal(t, model.RunStatusCompleted, progress.Status)
	assert.LessOrEqual(t, progress.FilesProcessed, progress.TotalFiles)

	// Finalize persisted report and results and cleared transient state
	report, err := f.service.Report()
	require.NoError(t, err)
	assert.Equal(t, run.ID, report.RunID)
	assert.Equal(t, model.OutcomeSuccess, report.Outcome)
	assert.Equal(t, 3, report.Summary.FilesAnalyzed)
	assert.Equal(t, 3, report.Summary.Totals.Critical)

	results, err := f.service.Results()
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = f.service.ActiveRunID()
	assert.ErrorIs(t, err, errs.ErrKeyNotFound)

	exists, err := f.store.Has(repository.BatchRunKey(run.ID))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProcessNextChunk_CheckpointSurvivesRestart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php", "b.php", "c.php"}}, nil)

	f.selector.EXPECT().ReadSource("/mod", gomock.Any()).Return("<?php\n", nil).Times(3)
	f.client.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, actx model.AnalysisContext) (*model.AnalysisResult, error) {
			return resultFor(actx.Module, actx.FilePath), nil
		}).Times(3)

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 2)
	require.NoError(t, err)

	_, err = f.service.ProcessNextChunk(context.Background(), run.ID)
	require.NoError(t, err)

	// A fresh service over the same store picks up from the checkpoint
	restarted := NewAnalysisService(f.selector, f.client, f.store, NewAggregateService(), &mocks.MockLogger{})
	resumed, err := restarted.Resume(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, resumed.FilesProcessed)

	progress, err := restarted.ProcessNextChunk(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, progress.Status)
	assert.Equal(t, 3, progress.FilesProcessed)
}

func TestProcessNextChunk_FileErrorRecordedAndRunContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php", "b.php"}}, nil)

	f.selector.EXPECT().ReadSource("/mod", "a.php").Return("<?php\n", nil)
	f.selector.EXPECT().ReadSource("/mod", "b.php").Return("<?php\n", nil)
	f.client.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, actx model.AnalysisContext) (*model.AnalysisResult, error) {
			if actx.FilePath == "a.php" {
				return nil, &errs.AnalysisError{FilePath: "a.php", StatusCode: 429, Message: "rate limit exhausted"}
			}
			return resultFor(actx.Module, actx.FilePath), nil
		}).Times(2)

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 10)
	require.NoError(t, err)

	progress, err := f.service.ProcessNextChunk(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, progress.Status)

	report, err := f.service.Report()
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePartial, report.Outcome)
	assert.Contains(t, report.Errors, "alpha/a.php")
	assert.Equal(t, 1, report.Summary.FilesAnalyzed)
}

func TestProcessNextChunk_ConcurrentDriversProcessEachFileOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php", "b.php"}}, nil)
	f.selector.EXPECT().ReadSource("/mod", gomock.Any()).Return("<?php\n", nil).AnyTimes()

	var mu sync.Mutex
	analyzed := make(map[string]int)
	f.client.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, actx model.AnalysisContext) (*model.AnalysisResult, error) {
			mu.Lock()
			analyzed[actx.FilePath]++
			mu.Unlock()
			// Widen the overlap window so an unserialized second driver
			// would load the same checkpoint
			time.Sleep(20 * time.Millisecond)
			return resultFor(actx.Module, actx.FilePath), nil
		}).AnyTimes()

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 1)
	require.NoError(t, err)

	// Two drivers step the run at the same time, like the runner job and
	// the step endpoint in production
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, stepErr := f.service.ProcessNextChunk(context.Background(), run.ID)
			assert.NoError(t, stepErr)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, analyzed, 2)
	for file, count := range analyzed {
		assert.Equal(t, 1, count, "file %s analyzed by more than one driver", file)
	}

	progress, err := f.service.Progress(run.ID)
	require.ErrorIs(t, err, errs.ErrKeyNotFound)
	assert.Nil(t, progress)

	report, err := f.service.Report()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.FilesAnalyzed)
}

func TestResume_NothingToResume(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	_, err := f.service.Resume(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, errs.ErrNothingToResume)
}

func TestProgress_ActiveRunWithoutID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	f.client.EXPECT().Available().Return(true)
	f.selector.EXPECT().SelectFiles("/mod", "alpha").
		Return(&model.ModuleFiles{Module: "alpha", Root: "/mod", Files: []string{"a.php"}}, nil)

	run, err := f.service.StartRun(context.Background(), []model.ModuleSelection{{Module: "alpha", Root: "/mod"}}, 1)
	require.NoError(t, err)

	progress, err := f.service.Progress("")
	require.NoError(t, err)
	assert.Equal(t, run.ID, progress.RunID)
	assert.Equal(t, 0, progress.FilesProcessed)
	assert.Equal(t, 1, progress.TotalFiles)
}

func TestStartRun_EmptySelection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchestratorFixture(t, ctrl)

	_, err := f.service.StartRun(context.Background(), nil, 2)
	assert.Error(t, err)
}
