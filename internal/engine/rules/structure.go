package rules

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CyberHandLLC/archguard/internal/engine"
)

// Framework-reserved file names that are exempt from the PascalCase check.
var reservedNames = map[string]bool{
	"page":         true,
	"layout":       true,
	"loading":      true,
	"error":        true,
	"global-error": true,
	"not-found":    true,
	"template":     true,
	"default":      true,
	"route":        true,
	"middleware":   true,
	"index":        true,
}

var (
	pascalCaseRe    = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	anonDefaultRe   = regexp.MustCompile(`export\s+default\s+(?:async\s+)?(?:function\s*\(|\()`)
	defaultExportRe = regexp.MustCompile(`export\s+default\b`)
)

// StructureRule flags naming-convention violations, anonymous default
// exports, and files placed in directories inconsistent with their
// client/server role.
type StructureRule struct{}

func NewStructureRule() *StructureRule {
	return &StructureRule{}
}

func (r *StructureRule) Name() string {
	return "structure"
}

func (r *StructureRule) AppliesTo(path string) bool {
	switch filepath.Ext(path) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

func (r *StructureRule) Check(ctx context.Context, f *engine.File) (*engine.RuleResult, error) {
	res := &engine.RuleResult{}

	base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	if !reservedNames[base] && !pascalCaseRe.MatchString(base) {
		res.Warnings = append(res.Warnings,
			"component file name should be PascalCase: "+base)
	}

	if anonDefaultRe.MatchString(f.Content) {
		res.Warnings = append(res.Warnings,
			"anonymous default export; name the component so stack traces and dev tools can identify it")
	} else if strings.Contains(f.Path, "/components/") && !defaultExportRe.MatchString(f.Content) {
		res.Warnings = append(res.Warnings,
			"component file without a default export")
	}

	// Directory role consistency: a client-marked file has no business in a
	// server directory, and server-only imports must stay out of client dirs.
	marker := hasClientMarker(f.Content)
	dir := "/" + filepath.ToSlash(filepath.Dir(f.Path)) + "/"
	switch {
	case marker && strings.Contains(dir, "/server/"):
		res.Errors = append(res.Errors,
			"\"use client\" component placed in a server directory")
	case !marker && strings.Contains(dir, "/client/"):
		res.Errors = append(res.Errors,
			"server component placed in a client directory; add the directive or move the file")
	}

	return res, nil
}
