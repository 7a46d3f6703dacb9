package rules

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// fetchCallRe finds fetch invocations together with their first argument
// region, enough context to look for caching options nearby.
var fetchCallRe = regexp.MustCompile(`\bfetch\s*\(`)

// cacheOptionRe matches the caching knobs that make a server-side fetch
// acceptable: an explicit cache mode or a revalidation window.
var cacheOptionRe = regexp.MustCompile(`\bcache\s*:\s*['"](?:force-cache|no-store|no-cache)['"]|\bnext\s*:\s*\{[^}]*\brevalidate\b`)

// asyncFnRe matches an async function or arrow declaration.
var asyncFnRe = regexp.MustCompile(`\basync\s+(?:function\b|\()|\basync\s+\w+\s*(?:=>|\()|=\s*async\b`)

// DataFetchRule flags uncached fetch calls in server-rendered modules and
// fetch usage in files with no async boundary at all.
type DataFetchRule struct{}

func NewDataFetchRule() *DataFetchRule {
	return &DataFetchRule{}
}

func (r *DataFetchRule) Name() string {
	return "datafetch"
}

func (r *DataFetchRule) AppliesTo(path string) bool {
	switch filepath.Ext(path) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs":
		return !strings.HasSuffix(path, ".d.ts")
	}
	return false
}

func (r *DataFetchRule) Check(ctx context.Context, f *engine.File) (*engine.RuleResult, error) {
	res := &engine.RuleResult{}

	calls := fetchCallRe.FindAllStringIndex(f.Content, -1)
	if len(calls) == 0 {
		return res, nil
	}

	if !asyncFnRe.MatchString(f.Content) {
		res.Errors = append(res.Errors,
			"fetch call outside any async function; data fetching must happen inside an async boundary")
		return res, nil
	}

	// Client components manage their own fetching lifecycle; the caching
	// requirement only applies to server-rendered modules.
	if hasClientMarker(f.Content) {
		return res, nil
	}

	for _, loc := range calls {
		if ctx.Err() != nil {
			break
		}
		// Inspect the call site plus a window after it for cache options.
		end := min(loc[1]+300, len(f.Content))
		if !cacheOptionRe.MatchString(f.Content[loc[0]:end]) {
			res.Warnings = append(res.Warnings,
				"uncached fetch in server component; add a cache mode or next.revalidate option")
			break
		}
	}

	return res, nil
}
