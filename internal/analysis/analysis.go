// Package analysis is the top-level orchestration context (spec.md §3's
// "top-level analysis context" that owns every record for the duration of
// one invocation): it wires the scanner, cache, extractor, root resolver,
// graph builder, path resolver, and per-mode dead-set detectors into one
// crate analysis, mirroring the shape of the teacher's
// internal/analysis/service.go orchestrator (generalized from "one
// language adapter, many repos" to "one language, eight analysis modes").
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ben-ranford/deadmod/internal/cache"
	"github.com/ben-ranford/deadmod/internal/deadset"
	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/rootresolver"
	"github.com/ben-ranford/deadmod/internal/rust"
	"github.com/ben-ranford/deadmod/internal/safeio"
	"github.com/ben-ranford/deadmod/internal/scan"
)

func readSource(path string) ([]byte, error) {
	return safeio.ReadFile(path)
}

// Result is one crate's complete analysis: every mode's dead-set result,
// the module-entity map the Fixer needs, and any warnings collected along
// the way (unreadable files, parse errors, cache issues — spec.md §7's
// "a single malformed input never prevents the rest of the analysis from
// running").
type Result struct {
	CrateDir       string
	CrateName      string
	ModuleRoots    []string
	ModuleEntities map[string]model.ModuleEntity
	Modes          map[model.Mode]deadset.Result
	Warnings       []string
}

// AnalyzeCrate runs the full pipeline (scan → hash → parse/extract →
// root resolve → graph build → reachability → dead-set) for one crate
// directory. Every file is parsed in full this invocation regardless of
// cache status: seven of the eight analysis modes need the complete parse
// tree, and CacheRecord only persists the lightweight module-reference list
// spec.md §4.2's contract describes — see DESIGN.md for why the
// incremental skip-parse fast path is exposed separately as
// IncrementalModules rather than folded into this entry point.
func AnalyzeCrate(ctx context.Context, crateDir string, ignore []string) (Result, error) {
	scanResult, err := scan.Scan(ctx, crateDir, nil)
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", crateDir, err)
	}

	manifest := rust.LoadManifest(filepath.Join(crateDir, "Cargo.toml"))
	crateName := manifest.PackageName
	if crateName == "" {
		crateName = filepath.Base(crateDir)
	}

	result := Result{
		CrateDir:  crateDir,
		CrateName: crateName,
		Warnings:  append([]string(nil), scanResult.Warnings...),
	}
	result.ModuleRoots = rootresolver.ModuleRoots(crateDir)

	parser := rust.NewParser()
	fileSet := make(map[string]bool, len(scanResult.Files))
	for _, f := range scanResult.Files {
		fileSet[f] = true
	}

	// Pass 1: a throwaway parse of every file with an empty module-path
	// context, used only to discover `mod NAME;` declarations. Those
	// declarations are syntactically present regardless of the scope they
	// are parsed with, so this pass is enough to link each file to its
	// declaring parent and compute every file's true dotted module path —
	// which pass 2 then re-parses with, so function/const/etc. full paths
	// come out correctly nested.
	content := make(map[string][]byte, len(scanResult.Files))
	moduleRefsByFile := make(map[string][]string, len(scanResult.Files))
	hashes := make(map[string]string, len(scanResult.Files))
	for _, file := range scanResult.Files {
		c, err := readSource(file)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping unreadable file %s: %v", file, err))
			continue
		}
		digest, err := cache.HashFile(file)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("hash %s: %v", file, err))
			continue
		}
		content[file] = c
		hashes[file] = digest
		probe := rust.Extract(parser, file, c, model.ModulePathContext{CrateName: crateName})
		moduleRefsByFile[file] = probe.ModuleRefs
	}

	parentOf := resolveParents(scanResult.Files, moduleRefsByFile, fileSet)
	modulePaths := resolveModulePaths(scanResult.Files, parentOf)

	// Pass 2: the real extraction, with each file's correct dotted module
	// path threaded through so nested `impl`/`fn`/`const` full paths reflect
	// the crate's actual module tree instead of a flat one.
	extractedByFile := make(map[string]*model.Extracted, len(content))
	var allExtracted []*model.Extracted
	refsOut := make(map[string][]string, len(content))
	for _, file := range scanResult.Files {
		c, ok := content[file]
		if !ok {
			continue
		}
		modCtx := model.ModulePathContext{CrateName: crateName, ModulePath: modulePaths[file]}
		extracted := rust.Extract(parser, file, c, modCtx)
		if extracted.ParseError {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", file, extracted.Warning))
		}
		extractedByFile[file] = extracted
		allExtracted = append(allExtracted, extracted)
		refsOut[file] = moduleRefsOf(extracted)
	}

	entities, warnings := buildModuleEntities(scanResult.Files, extractedByFile, parentOf)
	result.ModuleEntities = entities
	result.Warnings = append(result.Warnings, warnings...)

	if doc := cache.BuildDocument(hashes, refsOut); true {
		if err := cache.Save(crateDir, doc); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("write cache: %v", err))
		}
	}

	result.Modes = runAllModes(allExtracted, entities, result.ModuleRoots, crateName, ignore)
	return result, nil
}

// resolveParents matches every `mod NAME;` declaration against the Rust
// module-path convention (internal/rust.ChildModulePaths) to find which
// scanned file, if any, backs that declaration — the module_name →
// ParentFile link spec.md §4.2's ModuleEntity needs.
func resolveParents(files []string, moduleRefsByFile map[string][]string, fileSet map[string]bool) map[string]string {
	parentOf := make(map[string]string, len(files))
	for _, file := range files {
		for _, childName := range moduleRefsByFile[file] {
			for _, candidate := range rust.ChildModulePaths(file, childName) {
				if !fileSet[candidate] {
					continue
				}
				if _, already := parentOf[candidate]; !already {
					parentOf[candidate] = file
				}
				break
			}
		}
	}
	return parentOf
}

// resolveModulePaths computes each file's full dotted module path by
// walking its parent chain up to a crate-root file (main.rs/lib.rs, whose
// own path is "").
func resolveModulePaths(files []string, parentOf map[string]string) map[string]string {
	memo := make(map[string]string, len(files))
	var resolve func(file string, seen map[string]bool) string
	resolve = func(file string, seen map[string]bool) string {
		if path, ok := memo[file]; ok {
			return path
		}
		name := rust.ModuleNameForFile(file)
		if name == "main" || name == "lib" {
			memo[file] = ""
			return ""
		}
		parent, hasParent := parentOf[file]
		if !hasParent || seen[file] {
			memo[file] = name
			return name
		}
		seen[file] = true
		parentPath := resolve(parent, seen)
		path := joinScope(parentPath, name)
		memo[file] = path
		return path
	}
	for _, file := range files {
		resolve(file, make(map[string]bool))
	}
	return memo
}

func moduleRefsOf(ex *model.Extracted) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range ex.ModuleRefs {
		add(name)
	}
	for _, ref := range ex.References[model.ModeModule] {
		add(ref.Name)
	}
	sort.Strings(out)
	return out
}

// buildModuleEntities derives the module_name → ModuleEntity map spec.md
// §4.2 contracts from the already-resolved parent links.
func buildModuleEntities(files []string, extractedByFile map[string]*model.Extracted, parentOf map[string]string) (map[string]model.ModuleEntity, []string) {
	entities := make(map[string]model.ModuleEntity, len(files))
	var warnings []string

	for _, file := range files {
		ex := extractedByFile[file]
		if ex == nil {
			continue
		}
		name := rust.ModuleNameForFile(file)
		if existing, ok := entities[name]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"module name %q resolves to both %s and %s; the later file wins", name, existing.Path, file))
		}
		entities[name] = model.ModuleEntity{
			Name:       name,
			Path:       file,
			ParentFile: parentOf[file],
			References: moduleRefsOf(ex),
		}
	}

	return entities, warnings
}

func joinScope(ownerPath, name string) string {
	if ownerPath == "" {
		return name
	}
	return ownerPath + "::" + name
}

// runAllModes builds each mode's graph and computes its dead set.
func runAllModes(extracted []*model.Extracted, entities map[string]model.ModuleEntity, moduleRoots []string, crateName string, ignore []string) map[model.Mode]deadset.Result {
	modes := make(map[model.Mode]deadset.Result, len(model.Modes))

	modes[model.ModeModule] = deadset.DetectModules(entities, moduleRoots, ignore)

	moduleNames := make(map[string]bool, len(entities))
	for name := range entities {
		moduleNames[name] = true
	}

	funcDefs := deadset.FunctionDefs(extracted)
	var allFuncDefs []model.Definition
	for _, d := range funcDefs {
		allFuncDefs = append(allFuncDefs, d)
	}
	callRoots := rootresolver.CallGraphRoots(allFuncDefs, moduleRoots)
	// spec.md §8 scenario 2: a `use crate::util::helper;` in a crate-root
	// file pulls helper into that root's public API surface even though
	// nothing in the crate ever calls it by name — a `use` contributes no
	// call-graph edge on its own, so without this a reachable-through-
	// import function is reported dead.
	callRoots = append(callRoots, importedRootFunctions(extracted, funcDefs, crateName)...)
	callGraph := deadset.BuildCallGraph(extracted, funcDefs, moduleNames)
	modes[model.ModeFunction] = deadset.DetectFunctions(model.ModeFunction, funcDefs, callGraph, callRoots, ignore)
	modes[model.ModeTraitMethod] = deadset.DetectFunctions(model.ModeTraitMethod, funcDefs, callGraph, callRoots, ignore)

	for _, mode := range []model.Mode{model.ModeGeneric, model.ModeMacro, model.ModeConstant, model.ModeEnumVariant} {
		var defs []model.Definition
		var refs []model.Reference
		for _, ex := range extracted {
			defs = append(defs, ex.Definitions[mode]...)
			refs = append(refs, ex.References[mode]...)
		}
		modes[mode] = deadset.Detect(mode, defs, refs, ignore)
	}

	modes[model.ModeMatchArm] = deadset.DetectMatchArms(extracted, ignore)

	return modes
}

// importedRootFunctions finds every public function imported by name (via
// `use`) from a crate-root file (main.rs, lib.rs or a src/bin/X/main.rs —
// the files whose module path resolves to ""; a src/bin/X.rs resolves to
// "X" and is not covered) — spec.md §8 scenario 2's "call-graph
// roots include public API of lib" clause. A plain `use` contributes no
// call-graph edge of its own, so without seeding these as roots directly an
// imported-but-never-called public function would be reported dead.
func importedRootFunctions(extracted []*model.Extracted, funcDefs map[string]model.Definition, crateName string) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, ex := range extracted {
		if ex.ModuleCtx.ModulePath != "" || ex.UseMap == nil {
			continue
		}
		for _, full := range ex.UseMap.ByTerminal {
			target := normalizeUsePath(full, crateName)
			def, ok := funcDefs[target]
			if !ok || def.Visibility != model.VisibilityPublic || seen[target] {
				continue
			}
			seen[target] = true
			roots = append(roots, target)
		}
	}
	sort.Strings(roots)
	return roots
}

// normalizeUsePath strips a leading "crate::"/"self::"/crate-name segment
// from a `use` clause's stored full path, matching the module-relative
// form Definition.FullPath uses — the same crate-local normalization
// rust.Extract applies when it decides a `use` contributes a module-graph
// edge.
func normalizeUsePath(path, crateName string) string {
	switch {
	case strings.HasPrefix(path, "crate::"):
		return strings.TrimPrefix(path, "crate::")
	case strings.HasPrefix(path, "self::"):
		return strings.TrimPrefix(path, "self::")
	case crateName != "" && strings.HasPrefix(path, crateName+"::"):
		return strings.TrimPrefix(path, crateName+"::")
	default:
		return path
	}
}
