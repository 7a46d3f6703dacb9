package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// DefaultMaxLines is the line threshold above which a file is an error.
const DefaultMaxLines = 500

// warnRatio of the threshold at which a file draws a warning.
const warnRatio = 0.8

// SizeRule flags files whose line count exceeds a configurable threshold,
// and warns on files approaching it.
type SizeRule struct {
	maxLines int
}

// NewSizeRule creates a size rule. maxLines <= 0 falls back to DefaultMaxLines.
func NewSizeRule(maxLines int) *SizeRule {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &SizeRule{maxLines: maxLines}
}

func (r *SizeRule) Name() string {
	return "size"
}

func (r *SizeRule) AppliesTo(path string) bool {
	// Declaration files are generated and often huge; not worth flagging.
	return !strings.HasSuffix(path, ".d.ts")
}

func (r *SizeRule) Check(ctx context.Context, f *engine.File) (*engine.RuleResult, error) {
	lines := countLines(f.Content)
	res := &engine.RuleResult{}

	warnAt := int(float64(r.maxLines) * warnRatio)
	switch {
	case lines > r.maxLines:
		res.Errors = append(res.Errors,
			fmt.Sprintf("file size %d lines exceeds limit of %d", lines, r.maxLines))
	case lines > warnAt:
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("file size %d lines is approaching the limit of %d", lines, r.maxLines))
	}
	return res, nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
