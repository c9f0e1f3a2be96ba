package model

// Issue types reported by the analyzer.
const (
	IssueTypeDeprecation  = "deprecation"
	IssueTypeSecurity     = "security"
	IssueTypePerformance  = "performance"
	IssueTypeBestPractice = "best_practice"
	IssueTypeStandards    = "standards"
	IssueTypeUnknown      = "unknown"
)

// Issue priorities. AI output occasionally uses high/medium/low; those are
// normalized onto the same three tiers.
const (
	PriorityCritical   = "critical"
	PriorityWarning    = "warning"
	PrioritySuggestion = "suggestion"
	PriorityUnknown    = "unknown"
)

var knownIssueTypes = map[string]bool{
	IssueTypeDeprecation:  true,
	IssueTypeSecurity:     true,
	IssueTypePerformance:  true,
	IssueTypeBestPractice: true,
	IssueTypeStandards:    true,
}

var priorityAliases = map[string]string{
	PriorityCritical:   PriorityCritical,
	PriorityWarning:    PriorityWarning,
	PrioritySuggestion: PrioritySuggestion,
	"high":             PriorityCritical,
	"medium":           PriorityWarning,
	"low":              PrioritySuggestion,
}

// NormalizeIssueType maps unrecognized issue types to "unknown"
func NormalizeIssueType(t string) string {
	if knownIssueTypes[t] {
		return t
	}
	return IssueTypeUnknown
}

// NormalizePriority maps priority aliases onto the canonical tiers
func NormalizePriority(p string) string {
	if canonical, ok := priorityAliases[p]; ok {
		return canonical
	}
	return PriorityUnknown
}

// Issue is one discrete finding reported for a file. Immutable once created.
type Issue struct {
	Type          string `json:"type"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	CurrentCode   string `json:"current_code,omitempty"`
	SuggestedCode string `json:"suggested_code,omitempty"`
	LineNumber    int    `json:"line_number,omitempty"`
}

// AnalysisResult holds the findings for a single file. A re-analysis of the
// same file supersedes the previous result, it is never merged.
type AnalysisResult struct {
	FilePath string   `json:"file_path"`
	Module   string   `json:"module"`
	Issues   []Issue  `json:"issues"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// AnalysisContext carries the metadata sent alongside a source snippet.
type AnalysisContext struct {
	FilePath       string
	Module         string
	CurrentVersion string
	TargetVersion  string
	AnalysisType   string
}

// Analysis types selecting the prompt template.
const (
	AnalysisTypeGeneral       = "general"
	AnalysisTypeDeprecation   = "deprecation"
	AnalysisTypeSecurity      = "security"
	AnalysisTypePerformance   = "performance"
	AnalysisTypeCommandOutput = "command_output"
	AnalysisTypeSQL           = "sql"
)

// SeverityCounts is an issue count per priority tier.
type SeverityCounts struct {
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Suggestion int `json:"suggestion"`
	Unknown    int `json:"unknown"`
}

// Total returns the sum across all tiers
func (c SeverityCounts) Total() int {
	return c.Critical + c.Warning + c.Suggestion + c.Unknown
}

// Add counts one issue of the given canonical priority
func (c *SeverityCounts) Add(priority string) {
	switch priority {
	case PriorityCritical:
		c.Critical++
	case PriorityWarning:
		c.Warning++
	case PrioritySuggestion:
		c.Suggestion++
	default:
		c.Unknown++
	}
}

// RunSummary is the aggregate view of a completed run. It is recomputed from
// the full result map every time, never incrementally patched.
type RunSummary struct {
	Totals        SeverityCounts            `json:"totals"`
	ByModule      map[string]SeverityCounts `json:"by_module"`
	IssueTypes    map[string]int            `json:"issue_types"`
	FilesAnalyzed int                       `json:"files_analyzed"`
	TotalIssues   int                       `json:"total_issues"`
}
