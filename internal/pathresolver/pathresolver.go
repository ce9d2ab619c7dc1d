// Package pathresolver implements the call-graph Path Resolver (spec.md
// §4.6): it disambiguates a raw call-site surface name against the owning
// file's UseMap and module context, returning candidate fully-qualified
// callee paths in decreasing priority. Resolution is conservative — when
// more than one candidate is plausible, every candidate is returned rather
// than guessing one, so reachability is only ever over-approximated, never
// under-approximated (spec.md §4.6).
package pathresolver

import "github.com/ben-ranford/deadmod/internal/model"

// Resolve returns the candidate fully-qualified paths surface could refer
// to, ordered by the priority spec.md §4.6 lists:
//
//  1. alias/terminal match in the UseMap
//  2. a path whose head names a known module segment, prefixed with crate
//  3. same-module sibling lookup
//  4. crate-root lookup
func Resolve(surface string, useMap *model.UseMap, ctx model.ModulePathContext, knownModules map[string]bool) []string {
	var candidates []string
	add := func(path string) {
		if path == "" {
			return
		}
		for _, existing := range candidates {
			if existing == path {
				return
			}
		}
		candidates = append(candidates, path)
	}

	if useMap != nil {
		if full, ok := useMap.Resolve(surface); ok {
			add(full)
		}
	}

	if head := leadingSegment(surface); head != "" && knownModules[head] {
		add(join(ctx.CrateName, surface))
	}

	add(join(ctx.ModulePath, surface))
	add(join(ctx.CrateName, surface))

	return candidates
}

// AnyResolves returns the candidates that name a node present in
// knownCallees, in candidate order — the call-graph builder emits an edge to
// each of them, and drops the call site when none remain.
func AnyResolves(candidates []string, knownCallees map[string]bool) []string {
	var resolved []string
	for _, c := range candidates {
		if knownCallees[c] {
			resolved = append(resolved, c)
		}
	}
	return resolved
}

func leadingSegment(path string) string {
	for i := 0; i+1 < len(path); i++ {
		if path[i] == ':' && path[i+1] == ':' {
			return path[:i]
		}
	}
	return path
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "::" + name
}
