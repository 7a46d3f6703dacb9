package engine

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Directories that never contain project source (build output, dependencies).
var skipDirs = map[string]bool{
	"node_modules": true,
	".next":        true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
}

// Source file extensions the validators understand.
var sourceExts = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
}

// IsSourceFile reports whether the path has a recognized source extension.
func IsSourceFile(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// ListSourceFiles enumerates candidate source files under root, excluding
// build output and dependency directories. Returned paths are relative to
// root and use forward slashes.
func ListSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
