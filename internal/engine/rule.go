package engine

import (
	"context"
)

// Rule is the interface every architecture rule must implement.
// Rules are pure: they inspect one file's path and content, perform no I/O,
// and must return quickly. A rule reports problems through RuleResult, not
// by returning an error; errors are reserved for internal failures.
type Rule interface {
	// Name returns the rule's unique identifier (e.g., "boundary").
	Name() string

	// AppliesTo reports whether the rule wants to inspect the given file path.
	// Rules use this to skip files outside their concern (e.g., the size rule
	// skips declaration files).
	AppliesTo(path string) bool

	// Check runs the rule against the given file.
	// Must respect ctx cancellation and return early if ctx is done.
	Check(ctx context.Context, f *File) (*RuleResult, error)
}

// File is one source file handed to a rule.
type File struct {
	Path    string
	Content string
}

// RuleResult is the outcome of a single rule run against one file.
type RuleResult struct {
	Errors   []string
	Warnings []string
}

// Clean reports whether the rule found nothing.
func (r *RuleResult) Clean() bool {
	return r == nil || (len(r.Errors) == 0 && len(r.Warnings) == 0)
}
