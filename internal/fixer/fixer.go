// Package fixer implements the auto-fix orchestrator (spec.md §4.8): it
// deletes dead module files, rewrites the `mod NAME;` declaration out of
// the parent file, and prunes directories left empty by the removals —
// all under the symlink and recursion-depth safety gates spec.md §7 and
// §8 require.
package fixer

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ben-ranford/deadmod/internal/model"
)

// maxPruneDepth bounds upward directory pruning so a hostile filesystem
// (e.g. a deep symlink cycle) cannot cause unbounded recursion — spec.md
// §4.8 requires at least 100 levels from the removal site.
const maxPruneDepth = 128

// Result is the outcome of one fix invocation.
type Result struct {
	RemovedFiles        []string
	RemovedDeclarations []string
	RemovedDirectories  []string
	Errors              []string
}

// Fix removes every dead module in deadModules, rewrites the declaring
// parent file for each, and prunes directories left empty. On dryRun, no
// filesystem mutation occurs; the result still reports the actions that
// would have been taken.
func Fix(root string, deadModules []string, entities map[string]model.ModuleEntity, dryRun bool) Result {
	var result Result
	sort.Strings(deadModules)

	touchedDirs := make(map[string]bool)

	for _, name := range deadModules {
		entity, ok := entities[name]
		if !ok || entity.Inline || entity.Path == "" {
			continue
		}

		if isSymlink(entity.Path) {
			result.Errors = append(result.Errors, fmt.Sprintf("refusing to remove symlink target %s", entity.Path))
			continue
		}

		if entity.ParentFile != "" {
			removed, err := rewriteParent(entity.ParentFile, name, dryRun)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("rewrite %s: %v", entity.ParentFile, err))
			} else if removed {
				result.RemovedDeclarations = append(result.RemovedDeclarations, fmt.Sprintf("%s: mod %s;", entity.ParentFile, name))
			}
		}

		if !dryRun {
			if err := os.Remove(entity.Path); err != nil && !os.IsNotExist(err) {
				result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", entity.Path, err))
				continue
			}
		}
		result.RemovedFiles = append(result.RemovedFiles, entity.Path)
		touchedDirs[filepath.Dir(entity.Path)] = true
	}

	if !dryRun {
		dirs := pruneEmptyDirectories(root, touchedDirs)
		result.RemovedDirectories = append(result.RemovedDirectories, dirs...)
	}

	sort.Strings(result.RemovedFiles)
	sort.Strings(result.RemovedDeclarations)
	sort.Strings(result.RemovedDirectories)
	return result
}

// isSymlink reports whether path names a symbolic link, using Lstat (never
// following the link) — spec.md §4.8's "symlink metadata, not
// follow-through stat" requirement.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// modDeclPattern matches a `mod NAME;` item line across every visibility
// spelling spec.md §4.8 lists: bare, pub, pub(crate), pub(super), pub(in …).
func modDeclPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*(?:pub(?:\s*\(\s*(?:crate|super|in\s+[^)]*)\s*\))?\s+)?mod\s+` + regexp.QuoteMeta(name) + `\s*;\s*$`)
}

var attributeLinePattern = regexp.MustCompile(`^\s*#!?\[.*\]\s*$`)

// rewriteParent removes the `mod name;` declaration line (and any
// immediately preceding attribute lines) from parentFile, collapsing runs
// of three-or-more resulting blank lines into one. It stages the new
// contents to a temp file and renames atomically, so either the rewrite
// fully lands or the original is left untouched — never a partial write.
func rewriteParent(parentFile, name string, dryRun bool) (bool, error) {
	data, err := os.ReadFile(parentFile)
	if err != nil {
		return false, err
	}

	declPattern := modDeclPattern(name)
	lines := splitLines(data)

	declIdx := -1
	for i, line := range lines {
		if declPattern.MatchString(line) {
			declIdx = i
			break
		}
	}
	if declIdx == -1 {
		return false, nil
	}

	removeFrom := declIdx
	for removeFrom > 0 && attributeLinePattern.MatchString(lines[removeFrom-1]) {
		removeFrom--
	}

	newLines := make([]string, 0, len(lines))
	newLines = append(newLines, lines[:removeFrom]...)
	newLines = append(newLines, lines[declIdx+1:]...)

	collapsed := collapseBlankRuns(newLines)
	newContent := strings.Join(collapsed, "\n")

	if dryRun {
		return true, nil
	}
	return true, writeFileAtomic(parentFile, []byte(newContent))
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func collapseBlankRuns(lines []string) []string {
	var out []string
	blankRun := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankRun++
			if blankRun == 3 {
				out = out[:len(out)-1]
			}
			if blankRun >= 3 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// pruneEmptyDirectories walks upward from each directory a removal touched,
// removing directories left empty, stopping at root/src or the hard depth
// ceiling — whichever comes first.
func pruneEmptyDirectories(root string, startDirs map[string]bool) []string {
	rootClean := filepath.Clean(root)
	srcDir := filepath.Join(rootClean, "src")

	var removed []string
	seen := make(map[string]bool)
	for dir := range startDirs {
		dir = filepath.Clean(dir)
		for depth := 0; depth < maxPruneDepth; depth++ {
			if dir == rootClean || dir == srcDir || dir == "." || dir == string(filepath.Separator) {
				break
			}
			if seen[dir] {
				break
			}
			entries, err := os.ReadDir(dir)
			if err != nil || len(entries) != 0 {
				break
			}
			if isSymlink(dir) {
				break
			}
			if err := os.Remove(dir); err != nil {
				break
			}
			seen[dir] = true
			removed = append(removed, dir)
			dir = filepath.Dir(dir)
		}
	}
	sort.Strings(removed)
	return removed
}
