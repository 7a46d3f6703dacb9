package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFileWorkers bounds how many files are validated concurrently.
const DefaultFileWorkers = 8

// Orchestrator enumerates project files and fans each one out to the
// applicable rules, merging everything into a single ProjectResult.
type Orchestrator struct {
	rules   []Rule
	workers int
	logger  *zap.Logger
}

// NewOrchestrator creates an orchestrator with the given rules.
// workers <= 0 falls back to DefaultFileWorkers.
func NewOrchestrator(rules []Rule, workers int, logger *zap.Logger) *Orchestrator {
	if workers <= 0 {
		workers = DefaultFileWorkers
	}
	return &Orchestrator{
		rules:   rules,
		workers: workers,
		logger:  logger,
	}
}

// RuleNames returns the names of all registered rules.
func (o *Orchestrator) RuleNames() []string {
	names := make([]string, 0, len(o.rules))
	for _, r := range o.rules {
		names = append(names, r.Name())
	}
	return names
}

// selectRules resolves a requested rule-name subset. Empty means all rules.
// Unknown names are an error so a typo doesn't silently validate nothing.
func (o *Orchestrator) selectRules(names []string) ([]Rule, error) {
	if len(names) == 0 {
		return o.rules, nil
	}
	byName := make(map[string]Rule, len(o.rules))
	for _, r := range o.rules {
		byName[r.Name()] = r
	}
	selected := make([]Rule, 0, len(names))
	for _, n := range names {
		r, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", n)
		}
		selected = append(selected, r)
	}
	return selected, nil
}

// ValidateProject runs the selected rules against every source file under
// root. Files are processed in parallel (bounded by workers); a failing or
// panicking rule on one file becomes an error entry attributed to that file
// and never aborts the run.
func (o *Orchestrator) ValidateProject(ctx context.Context, root string, ruleNames []string) *ProjectResult {
	rules, err := o.selectRules(ruleNames)
	if err != nil {
		r := FailedResult("validate", err)
		return &ProjectResult{ValidationResult: *r}
	}

	files, err := ListSourceFiles(root)
	if err != nil {
		r := FailedResult("scan "+root, err)
		return &ProjectResult{ValidationResult: *r}
	}

	var mu sync.Mutex
	issues := make(map[string]*FileIssues)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			fi := o.checkFile(gctx, root, rel, rules)
			if fi != nil {
				mu.Lock()
				issues[rel] = fi
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // per-file failures are folded into issues

	return Aggregate(len(files), issues)
}

// checkFile reads one file and runs every applicable rule against it.
// Returns nil when the file is clean.
func (o *Orchestrator) checkFile(ctx context.Context, root, rel string, rules []Rule) *FileIssues {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		// Unreadable files are a finding, not a fault.
		return &FileIssues{Errors: []string{fmt.Sprintf("unreadable file: %v", err)}}
	}

	f := &File{Path: rel, Content: string(content)}
	fi := &FileIssues{}
	for _, rule := range rules {
		if ctx.Err() != nil {
			break
		}
		if !rule.AppliesTo(rel) {
			continue
		}
		res, err := o.runRule(ctx, rule, f)
		if err != nil {
			o.logger.Warn("rule failed",
				zap.String("rule", rule.Name()),
				zap.String("file", rel),
				zap.Error(err),
			)
			fi.Errors = append(fi.Errors, fmt.Sprintf("rule %s failed: %v", rule.Name(), err))
			continue
		}
		if res == nil {
			continue
		}
		fi.Errors = append(fi.Errors, res.Errors...)
		fi.Warnings = append(fi.Warnings, res.Warnings...)
	}

	if len(fi.Errors) == 0 && len(fi.Warnings) == 0 {
		return nil
	}
	return fi
}

// runRule invokes a single rule, converting a panic into an error so one
// misbehaving rule cannot take down the whole run.
func (o *Orchestrator) runRule(ctx context.Context, rule Rule, f *File) (res *RuleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Check(ctx, f)
}
