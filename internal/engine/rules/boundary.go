package rules

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// Pre-compiled client-capability patterns. Each one marks a usage that only
// works inside a client component. Detection is a text heuristic, not a
// parse, so string literals and comments can produce false positives.
var clientSignals = []struct {
	re     *regexp.Regexp
	detail string
}{
	{regexp.MustCompile(`\buseState\s*\(`), "useState hook"},
	{regexp.MustCompile(`\buseEffect\s*\(`), "useEffect hook"},
	{regexp.MustCompile(`\buseLayoutEffect\s*\(`), "useLayoutEffect hook"},
	{regexp.MustCompile(`\buseReducer\s*\(`), "useReducer hook"},
	{regexp.MustCompile(`\buseRef\s*\(`), "useRef hook"},
	{regexp.MustCompile(`\buseContext\s*\(`), "useContext hook"},
	{regexp.MustCompile(`\bon(Click|Change|Submit|Focus|Blur|KeyDown|KeyUp|MouseEnter|MouseLeave)\s*=`), "DOM event handler"},
	{regexp.MustCompile(`\bwindow\.`), "window global"},
	{regexp.MustCompile(`\bdocument\.`), "document global"},
	{regexp.MustCompile(`\blocalStorage\b`), "localStorage"},
	{regexp.MustCompile(`\bsessionStorage\b`), "sessionStorage"},
	{regexp.MustCompile(`\bnavigator\.`), "navigator global"},
}

// useClientRe matches the client-boundary directive on its own statement line.
var useClientRe = regexp.MustCompile(`^\s*['"]use client['"]\s*;?\s*$`)

// BoundaryRule flags client-only capabilities used without a leading
// "use client" directive, and directives present without any client usage.
type BoundaryRule struct{}

func NewBoundaryRule() *BoundaryRule {
	return &BoundaryRule{}
}

func (r *BoundaryRule) Name() string {
	return "boundary"
}

func (r *BoundaryRule) AppliesTo(path string) bool {
	switch filepath.Ext(path) {
	case ".tsx", ".jsx", ".ts", ".js":
		return !strings.HasSuffix(path, ".d.ts")
	}
	return false
}

func (r *BoundaryRule) Check(ctx context.Context, f *engine.File) (*engine.RuleResult, error) {
	res := &engine.RuleResult{}

	marker := hasClientMarker(f.Content)

	var used []string
	for _, sig := range clientSignals {
		if ctx.Err() != nil {
			break
		}
		if sig.re.MatchString(f.Content) {
			used = append(used, sig.detail)
		}
	}

	switch {
	case len(used) > 0 && !marker:
		res.Errors = append(res.Errors,
			"client-only capability without \"use client\" directive: "+strings.Join(used, ", "))
	case len(used) == 0 && marker:
		res.Warnings = append(res.Warnings,
			"\"use client\" directive but no client-only usage found; consider making this a server component")
	}

	return res, nil
}

// hasClientMarker reports whether the directive appears before the first
// real statement. Comments and blank lines above it are allowed.
func hasClientMarker(content string) bool {
	inBlockComment := false
	for _, line := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if inBlockComment {
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				inBlockComment = false
			}
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			if !strings.Contains(trimmed, "*/") {
				inBlockComment = true
			}
			continue
		}
		return useClientRe.MatchString(line)
	}
	return false
}
