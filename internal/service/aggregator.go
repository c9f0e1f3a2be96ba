// aggregator.go - Run result aggregation
package service

import (
	"upgrade-analyzer/internal/model"
)

// AggregateService folds per-file results into module and run summaries.
type AggregateService interface {
	Aggregate(results map[string]*model.AnalysisResult) *model.RunSummary
}

type aggregateService struct{}

// NewAggregateService creates the aggregator
func NewAggregateService() AggregateService {
	return &aggregateService{}
}

// Aggregate recomputes all counts from the full result map. It is a pure
// function of its input, safe to re-run, and buckets any unrecognized
// severity or issue type under "unknown" since AI output is not guaranteed
// to be schema-perfect.
func (a *aggregateService) Aggregate(results map[string]*model.AnalysisResult) *model.RunSummary {
	summary := &model.RunSummary{
		ByModule:   make(map[string]model.SeverityCounts),
		IssueTypes: make(map[string]int),
	}

	for _, result := range results {
		if result == nil {
			continue
		}
		summary.FilesAnalyzed++

		moduleCounts := summary.ByModule[result.Module]
		for _, issue := range result.Issues {
			priority := model.NormalizePriority(issue.Priority)
			summary.Totals.Add(priority)
			moduleCounts.Add(priority)
			summary.IssueTypes[model.NormalizeIssueType(issue.Type)]++
			summary.TotalIssues++
		}
		summary.ByModule[result.Module] = moduleCounts
	}

	return summary
}
