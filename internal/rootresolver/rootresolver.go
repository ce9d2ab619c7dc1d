// Package rootresolver implements the Root Resolver (spec.md §4.4): given a
// crate directory it produces the module-graph root entity set from
// well-known filesystem conventions, and separately computes the additional
// call-graph roots (entry points, test/bench functions, and public API
// surface of root modules).
package rootresolver

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ben-ranford/deadmod/internal/model"
)

// Crate is one independently-analyzed crate directory: its directory, its
// name and its own module root set. Each workspace member is analyzed as its own Crate — spec.md §9 resolves the
// "cross-crate workspace references" open question by keeping crates
// independent, never merging their root sets.
type Crate struct {
	Dir   string
	Name  string
	Roots []string
}

// ModuleRoots inspects crateDir for the filesystem signals spec.md §4.4
// lists and returns the module-graph root node names they imply. The
// resolver never fails: a crate directory missing src/ simply yields an
// empty root set, which is legitimate for workspace container directories
// that hold no source of their own.
func ModuleRoots(crateDir string) []string {
	var roots []string
	srcDir := filepath.Join(crateDir, "src")

	if fileExists(filepath.Join(srcDir, "main.rs")) {
		roots = append(roots, "main")
	}
	if fileExists(filepath.Join(srcDir, "lib.rs")) {
		roots = append(roots, "lib")
	}

	binDir := filepath.Join(srcDir, "bin")
	entries, err := os.ReadDir(binDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				if fileExists(filepath.Join(binDir, entry.Name(), "main.rs")) {
					roots = append(roots, entry.Name())
				}
				continue
			}
			name := entry.Name()
			if filepath.Ext(name) == ".rs" {
				roots = append(roots, stemOf(name))
			}
		}
	}

	sort.Strings(roots)
	return dedupe(roots)
}

// CallGraphRoots computes the additional root set the call graph seeds
// beyond the module roots: the `main` entry point, every function tagged as
// a test/bench, and every publicly visible function whose enclosing module
// is itself a root module — spec.md §4.4's "public API surface must be
// considered reachable by policy" clause.
func CallGraphRoots(defs []model.Definition, rootModules []string) []string {
	rootSet := make(map[string]bool, len(rootModules))
	for _, m := range rootModules {
		rootSet[m] = true
	}

	seen := make(map[string]bool)
	var roots []string
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		roots = append(roots, path)
	}

	for _, def := range defs {
		if def.Name == "main" {
			add(def.FullPath)
		}
		if isTestOrBench(def) {
			add(def.FullPath)
		}
		// A function defined directly in a crate-root file (main.rs/lib.rs)
		// carries a FullPath with no module prefix.
		inRootFile := len(rootSet) > 0 && len(splitPath(def.FullPath)) == 1
		if def.Visibility == model.VisibilityPublic && (rootSet[topSegment(def.FullPath)] || inRootFile) {
			add(def.FullPath)
		}
	}

	sort.Strings(roots)
	return roots
}

// isTestOrBench reports whether def looks like a #[test]/#[bench] function
// by the naming convention the extractor records for attributed items:
// the extractor itself does not special-case attributes (spec.md's
// extraction layer is purely syntactic over item shape), so this checks the
// module-path convention Rust crates actually use — functions nested in a
// module literally named "tests" or "benches".
func isTestOrBench(def model.Definition) bool {
	segments := splitPath(def.FullPath)
	for _, seg := range segments[:max(0, len(segments)-1)] {
		if seg == "tests" || seg == "benches" {
			return true
		}
	}
	return false
}

func topSegment(fullPath string) string {
	segments := splitPath(fullPath)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

func splitPath(fullPath string) []string {
	var segments []string
	start := 0
	for i := 0; i+1 < len(fullPath); i++ {
		if fullPath[i] == ':' && fullPath[i+1] == ':' {
			segments = append(segments, fullPath[start:i])
			start = i + 2
			i++
		}
	}
	segments = append(segments, fullPath[start:])
	return segments
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func stemOf(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	var last string
	first := true
	for _, v := range sorted {
		if first || v != last {
			out = append(out, v)
			last = v
			first = false
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
