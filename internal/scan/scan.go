// Package scan implements the Scanner: it walks a crate root and yields a
// deterministic, sorted list of candidate ".rs" files, pruning build and
// VCS directories the way the teacher's per-language adapters prune
// node_modules/target/vendor trees during repository detection.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var baselineSkipDirs = map[string]bool{
	"target":       true,
	".git":         true,
	"node_modules": true,
	".cargo":       true,
}

// Result is the outcome of one scan: the sorted file list plus any
// per-entry warnings collected along the way. Individual unreadable
// entries are skipped with a warning rather than failing the whole scan.
type Result struct {
	Files    []string
	Warnings []string
}

// Scan walks root and returns every regular file with a ".rs" extension,
// in deterministic sorted order. Directories named "target", ".git",
// "node_modules", ".cargo", or any name in extraExcludes are pruned.
//
// Scan fails only if root itself does not exist or cannot be read;
// unreadable descendants are skipped with a warning.
func Scan(ctx context.Context, root string, extraExcludes []string) (Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Result{}, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("scan root %s is not a directory", root)
	}

	excludes := make(map[string]bool, len(extraExcludes))
	for _, name := range extraExcludes {
		name = strings.TrimSpace(name)
		if name != "" {
			excludes[name] = true
		}
	}

	result := Result{}
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping unreadable entry %s: %v", path, err))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			if path != root && shouldSkipDir(entry.Name(), excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".rs") {
			return nil
		}
		result.Files = append(result.Files, filepath.ToSlash(path))
		return nil
	})
	if walkErr != nil {
		return Result{}, walkErr
	}

	sort.Strings(result.Files)
	return result, nil
}

func shouldSkipDir(name string, extraExcludes map[string]bool) bool {
	if baselineSkipDirs[name] {
		return true
	}
	return extraExcludes[name]
}
