package llm

import (
	"fmt"
	"strings"

	"upgrade-analyzer/internal/model"
)

// systemPrompt is sent with every analysis request. The response contract is
// strict: a single JSON object, optionally inside one fenced json block.
const systemPrompt = `You are a code upgrade-compatibility analyzer. ` +
	`Review the provided source code and report upgrade issues. ` +
	`Respond with a single JSON object and nothing else, using this shape: ` +
	`{"issues":[{"type":"deprecation|security|performance|best_practice|standards",` +
	`"description":"...","priority":"critical|warning|suggestion",` +
	`"current_code":"...","code_example":"...","line_number":1}],` +
	`"warnings":["..."],"summary":"..."}`

var analysisInstructions = map[string]string{
	model.AnalysisTypeGeneral:       "Identify everything that must change for the code to run on the target version.",
	model.AnalysisTypeDeprecation:   "Focus on deprecated APIs, hooks and functions that are removed in the target version, and name their replacements.",
	model.AnalysisTypeSecurity:      "Focus on security problems: injection, unescaped output, missing access checks, unsafe deserialization.",
	model.AnalysisTypePerformance:   "Focus on performance problems: queries in loops, unbounded loads, missing caching.",
	model.AnalysisTypeCommandOutput: "The input is command output, not source code. Extract the reported problems as issues.",
	model.AnalysisTypeSQL:           "Focus on database queries: deprecated query APIs, unsafe string-built SQL, schema incompatibilities.",
}

// buildUserMessage embeds the source and its context into the user prompt
func buildUserMessage(sourceText string, actx model.AnalysisContext) string {
	instruction, ok := analysisInstructions[actx.AnalysisType]
	if !ok {
		instruction = analysisInstructions[model.AnalysisTypeGeneral]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Module: %s\n", actx.Module)
	fmt.Fprintf(&b, "File: %s\n", actx.FilePath)
	if actx.CurrentVersion != "" {
		fmt.Fprintf(&b, "Current framework version: %s\n", actx.CurrentVersion)
	}
	if actx.TargetVersion != "" {
		fmt.Fprintf(&b, "Target framework version: %s\n", actx.TargetVersion)
	}
	fmt.Fprintf(&b, "\n%s\n\n", instruction)
	fmt.Fprintf(&b, "Source:\n```\n%s\n```\n", sourceText)
	return b.String()
}
