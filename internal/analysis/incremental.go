package analysis

import (
	"github.com/ben-ranford/deadmod/internal/cache"
	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/rust"
)

// IncrementalModules is the literal `incremental_parse(root, files,
// prior_cache) → { module_name → ModuleEntity, new_cache }` contract of
// spec.md §4.2, exposed as its own entry point for callers that only need
// the module graph: unlike AnalyzeCrate (which always fully parses every
// file because the other seven modes require it), this path genuinely
// skips the parser for any file whose content hash matches prior, reusing
// its cached reference list instead — the fast path spec.md's incremental
// cache exists to provide.
func IncrementalModules(files []string, prior cache.Document, parser *rust.Parser, crateName string, read func(string) ([]byte, error)) (map[string]model.ModuleEntity, cache.Document, error) {
	plan, err := cache.Diff(files, prior)
	if err != nil {
		return nil, cache.Document{}, err
	}

	refsByFile := make(map[string][]string, len(files))
	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	moduleRefsByFile := make(map[string][]string, len(files))

	for file, record := range plan.Unchanged {
		refsByFile[file] = record.Refs
		moduleRefsByFile[file] = record.Refs
	}

	for _, file := range plan.Changed {
		content, err := read(file)
		if err != nil {
			continue
		}
		ctx := model.ModulePathContext{CrateName: crateName, ModulePath: rust.ModuleNameForFile(file)}
		extracted := rust.Extract(parser, file, content, ctx)
		refs := moduleRefsOf(extracted)
		refsByFile[file] = refs
		moduleRefsByFile[file] = extracted.ModuleRefs
	}

	entities := make(map[string]model.ModuleEntity, len(files))
	for _, file := range files {
		name := rust.ModuleNameForFile(file)
		entities[name] = model.ModuleEntity{
			Name:       name,
			Path:       file,
			References: refsByFile[file],
		}
	}

	for _, file := range files {
		for _, childName := range moduleRefsByFile[file] {
			for _, candidate := range rust.ChildModulePaths(file, childName) {
				if !fileSet[candidate] {
					continue
				}
				if entity, ok := entities[childName]; ok && entity.ParentFile == "" {
					entity.ParentFile = file
					entities[childName] = entity
				}
				break
			}
		}
	}

	newCache := cache.BuildDocument(plan.Hashes, refsByFile)
	return entities, newCache, nil
}
