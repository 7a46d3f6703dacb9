// Package depgraph evaluates a project's import graph against an allow/deny
// dependency policy.
package depgraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// EdgeResult is the outcome of a single-edge check.
type EdgeResult struct {
	Success   bool   `json:"success"`
	IsAllowed bool   `json:"isAllowed"`
	Message   string `json:"message"`
}

// GraphResult extends the base result with the evaluated edge lists.
type GraphResult struct {
	engine.ValidationResult
	Allowed []Edge `json:"allowed"`
	Denied  []Edge `json:"denied"`
}

// decision is the internal outcome of evaluating one edge.
type decision struct {
	allowed bool
	reason  string
}

// Checker evaluates dependency edges against a fixed policy.
// The policy is immutable for the checker's lifetime, so every method is
// safe for concurrent use and deterministic for identical input.
type Checker struct {
	policy *Policy
	logger *zap.Logger
}

// NewChecker creates a checker over the given policy.
func NewChecker(policy *Policy, logger *zap.Logger) *Checker {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Checker{policy: policy, logger: logger}
}

// evaluate applies the policy to one normalized edge: the most specific
// matching deny wins, then the most specific matching allow, then the
// policy default.
func (c *Checker) evaluate(source, target string) decision {
	bestDeny := -1
	var denyRule PolicyRule
	bestAllow := -1
	var allowRule PolicyRule

	for _, rule := range c.policy.Rules {
		srcSpec, ok := matchPattern(source, rule.Source)
		if !ok {
			continue
		}
		for _, pat := range rule.Deny {
			patSpec, ok := matchPattern(target, pat)
			if ok && srcSpec+patSpec > bestDeny {
				bestDeny = srcSpec + patSpec
				denyRule = rule
			}
		}
		for _, pat := range rule.Allow {
			patSpec, ok := matchPattern(target, pat)
			if ok && srcSpec+patSpec > bestAllow {
				bestAllow = srcSpec + patSpec
				allowRule = rule
			}
		}
	}

	switch {
	case bestDeny >= 0:
		return decision{
			allowed: false,
			reason:  fmt.Sprintf("denied by rule for %q", denyRule.Source),
		}
	case bestAllow >= 0:
		return decision{
			allowed: true,
			reason:  fmt.Sprintf("allowed by rule for %q", allowRule.Source),
		}
	default:
		return decision{
			allowed: c.policy.DefaultAction == ActionAllow,
			reason:  "no matching rule; policy default is " + c.policy.DefaultAction,
		}
	}
}

// CheckDependency evaluates one hypothetical source → target import without
// touching the filesystem. Pure over the loaded policy: identical input
// always yields an identical result.
func (c *Checker) CheckDependency(source, target string) *EdgeResult {
	src := normalizeModulePath(source)
	tgt := normalizeModulePath(target)
	d := c.evaluate(src, tgt)
	return &EdgeResult{
		Success:   true,
		IsAllowed: d.allowed,
		Message:   fmt.Sprintf("%s -> %s: %s", src, tgt, d.reason),
	}
}

// CheckProject walks the import graph under root and evaluates every edge.
// One unreadable file becomes an error entry, never an aborted run.
func (c *Checker) CheckProject(ctx context.Context, root string) *GraphResult {
	result := &GraphResult{
		ValidationResult: engine.ValidationResult{
			Success:  true,
			Errors:   []string{},
			Warnings: []string{},
		},
		Allowed: []Edge{},
		Denied:  []Edge{},
	}

	files, err := engine.ListSourceFiles(root)
	if err != nil {
		fr := engine.FailedResult("scan "+root, err)
		result.ValidationResult = *fr
		return result
	}

	edges := 0
	for _, rel := range files {
		if ctx.Err() != nil {
			break
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unreadable file: %v", rel, err))
			continue
		}
		source := normalizeModulePath(rel)
		for _, spec := range ExtractImports(string(content)) {
			target, ok := ResolveTarget(rel, spec)
			if !ok {
				continue // external package, not governed by the policy
			}
			edges++
			edge := Edge{Source: source, Target: target}
			d := c.evaluate(source, target)
			if d.allowed {
				result.Allowed = append(result.Allowed, edge)
			} else {
				result.Denied = append(result.Denied, edge)
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s -> %s: %s", source, target, d.reason))
			}
		}
	}

	result.Success = len(result.Errors) == 0
	result.Summary = fmt.Sprintf(
		"checked %d files, %d internal edges: %d allowed, %d denied",
		len(files), edges, len(result.Allowed), len(result.Denied),
	)
	if c.logger != nil {
		c.logger.Debug("dependency check complete",
			zap.Int("files", len(files)),
			zap.Int("edges", edges),
			zap.Int("denied", len(result.Denied)),
		)
	}
	return result
}

// normalizeModulePath strips extensions and backslashes so policy patterns
// match both file paths and bare module paths.
func normalizeModulePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "@/")
	if ext := filepath.Ext(p); ext != "" && engine.IsSourceFile(p) {
		p = strings.TrimSuffix(p, ext)
	}
	return strings.Trim(p, "/")
}
