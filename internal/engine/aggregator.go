package engine

import (
	"fmt"
	"sort"
)

// Aggregate folds per-file issues into a project-level result.
//
// Rules (applied in order):
//  1. Success is true iff no file produced any error.
//  2. Errors and Warnings are flattened in stable (sorted-path) order,
//     each entry prefixed with the originating file.
//  3. ComponentIssues keeps only files with at least one issue.
func Aggregate(filesChecked int, issues map[string]*FileIssues) *ProjectResult {
	result := &ProjectResult{
		ValidationResult: ValidationResult{
			Success:  true,
			Errors:   []string{},
			Warnings: []string{},
		},
		ComponentIssues: map[string]*FileIssues{},
	}

	paths := make([]string, 0, len(issues))
	for path := range issues {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	failedFiles := 0
	for _, path := range paths {
		fi := issues[path]
		if fi == nil || (len(fi.Errors) == 0 && len(fi.Warnings) == 0) {
			continue
		}
		result.ComponentIssues[path] = fi
		if len(fi.Errors) > 0 {
			failedFiles++
		}
		for _, e := range fi.Errors {
			result.Errors = append(result.Errors, path+": "+e)
		}
		for _, w := range fi.Warnings {
			result.Warnings = append(result.Warnings, path+": "+w)
		}
	}

	result.Success = len(result.Errors) == 0
	result.Summary = fmt.Sprintf(
		"checked %d files: %d passed, %d failed (%d errors, %d warnings)",
		filesChecked,
		filesChecked-failedFiles,
		failedFiles,
		len(result.Errors),
		len(result.Warnings),
	)
	return result
}
