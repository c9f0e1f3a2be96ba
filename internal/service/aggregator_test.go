package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upgrade-analyzer/internal/model"
)

func sampleResults() map[string]*model.AnalysisResult {
	return map[string]*model.AnalysisResult{
		"alpha/a.php": {
			FilePath: "a.php",
			Module:   "alpha",
			Issues: []model.Issue{
				{Type: model.IssueTypeDeprecation, Priority: model.PriorityCritical},
				{Type: model.IssueTypeSecurity, Priority: model.PriorityWarning},
			},
		},
		"alpha/b.php": {
			FilePath: "b.php",
			Module:   "alpha",
			Issues: []model.Issue{
				{Type: model.IssueTypeBestPractice, Priority: model.PrioritySuggestion},
			},
		},
		"beta/c.php": {
			FilePath: "c.php",
			Module:   "beta",
			Issues:   nil,
		},
	}
}

func TestAggregate_Counts(t *testing.T) {
	aggregator := NewAggregateService()

	summary := aggregator.Aggregate(sampleResults())

	assert.Equal(t, 3, summary.FilesAnalyzed)
	assert.Equal(t, 3, summary.TotalIssues)
	assert.Equal(t, 1, summary.Totals.Critical)
	assert.Equal(t, 1, summary.Totals.Warning)
	assert.Equal(t, 1, summary.Totals.Suggestion)

	alpha := summary.ByModule["alpha"]
	assert.Equal(t, 1, alpha.Critical)
	assert.Equal(t, 1, alpha.Warning)
	assert.Equal(t, 1, alpha.Suggestion)

	beta := summary.ByModule["beta"]
	assert.Equal(t, 0, beta.Total())

	assert.Equal(t, 1, summary.IssueTypes[model.IssueTypeDeprecation])
	assert.Equal(t, 1, summary.IssueTypes[model.IssueTypeSecurity])
	assert.Equal(t, 1, summary.IssueTypes[model.IssueTypeBestPractice])
}

func TestAggregate_Idempotent(t *testing.T) {
	aggregator := NewAggregateService()
	results := sampleResults()

	first := aggregator.Aggregate(results)
	second := aggregator.Aggregate(results)

	assert.Equal(t, first, second)
}

func TestAggregate_UnknownBucketing(t *testing.T) {
	aggregator := NewAggregateService()

	results := map[string]*model.AnalysisResult{
		"alpha/a.php": {
			Module: "alpha",
			Issues: []model.Issue{
				{Type: "made-up-type", Priority: "blocker"},
				{Type: "", Priority: ""},
			},
		},
	}

	summary := aggregator.Aggregate(results)

	assert.Equal(t, 2, summary.Totals.Unknown)
	assert.Equal(t, 2, summary.IssueTypes[model.IssueTypeUnknown])
	assert.Equal(t, 2, summary.TotalIssues)
}

func TestAggregate_PriorityAliases(t *testing.T) {
	aggregator := NewAggregateService()

	results := map[string]*model.AnalysisResult{
		"alpha/a.php": {
			Module: "alpha",
			Issues: []model.Issue{
				{Type: model.IssueTypeDeprecation, Priority: "high"},
				{Type: model.IssueTypeDeprecation, Priority: "medium"},
				{Type: model.IssueTypeDeprecation, Priority: "low"},
			},
		},
	}

	summary := aggregator.Aggregate(results)

	assert.Equal(t, 1, summary.Totals.Critical)
	assert.Equal(t, 1, summary.Totals.Warning)
	assert.Equal(t, 1, summary.Totals.Suggestion)
	assert.Equal(t, 0, summary.Totals.Unknown)
}

func TestAggregate_EmptyAndNil(t *testing.T) {
	aggregator := NewAggregateService()

	summary := aggregator.Aggregate(nil)
	assert.Equal(t, 0, summary.FilesAnalyzed)
	assert.Equal(t, 0, summary.TotalIssues)

	summary = aggregator.Aggregate(map[string]*model.AnalysisResult{"x": nil})
	assert.Equal(t, 0, summary.FilesAnalyzed)
}
