package engine

import "fmt"

// ValidationResult is the base result contract shared by every tool.
// Success is true iff Errors is empty; callers can always rely on that
// invariant regardless of which validator produced the result.
type ValidationResult struct {
	Success  bool     `json:"success"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Summary  string   `json:"summary"`
}

// FileIssues holds the accumulated errors and warnings for one file.
type FileIssues struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ProjectResult extends ValidationResult with per-file detail.
// ComponentIssues only contains files that produced at least one issue.
type ProjectResult struct {
	ValidationResult
	ComponentIssues map[string]*FileIssues `json:"componentIssues,omitempty"`
}

// FailedResult converts an internal failure into a normal failed result,
// so "the tool could not run" still reaches the caller as structured output.
func FailedResult(context string, err error) *ValidationResult {
	msg := fmt.Sprintf("%s: %v", context, err)
	return &ValidationResult{
		Success:  false,
		Errors:   []string{msg},
		Warnings: []string{},
		Summary:  msg,
	}
}
