package depgraph

import (
	"path"
	"regexp"
	"strings"
)

// Static import forms recognized by the extractor. Heuristic by design:
// imports inside template literals or comments will also match.
var importRes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*import\s+(?:type\s+)?[^'"]*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?m)^\s*export\s+[^'"]*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`),
}

// Edge is one source-file → imported-module relation.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ExtractImports returns the module specifiers statically imported by the
// given file content, in first-seen order, deduplicated.
func ExtractImports(content string) []string {
	seen := map[string]bool{}
	var specs []string
	for _, re := range importRes {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			spec := m[1]
			if spec == "" || seen[spec] {
				continue
			}
			seen[spec] = true
			specs = append(specs, spec)
		}
	}
	return specs
}

// ResolveTarget converts an import specifier into a project-relative module
// path. Returns false for external packages, which the policy does not
// govern. The "@/" alias maps to the project root.
func ResolveTarget(sourcePath, spec string) (string, bool) {
	switch {
	case strings.HasPrefix(spec, "@/"):
		return path.Clean(strings.TrimPrefix(spec, "@/")), true
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		resolved := path.Join(path.Dir(sourcePath), spec)
		if strings.HasPrefix(resolved, "..") {
			// Escapes the project root; treat as external.
			return "", false
		}
		return resolved, true
	default:
		return "", false
	}
}
