package deadset

import (
	"sort"

	"github.com/ben-ranford/deadmod/internal/graph"
	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/pathresolver"
)

// FunctionDefs collects every ModeFunction/ModeTraitMethod definition across
// all parsed files, keyed by fully-qualified path — the call graph's node
// identity.
func FunctionDefs(extracted []*model.Extracted) map[string]model.Definition {
	defs := make(map[string]model.Definition)
	for _, ex := range extracted {
		for _, mode := range []model.Mode{model.ModeFunction, model.ModeTraitMethod} {
			for _, d := range ex.Definitions[mode] {
				defs[d.FullPath] = d
			}
		}
	}
	return defs
}

// BuildCallGraph assembles the call graph: one node per known function/
// method, edges from caller to every resolved candidate callee. Resolution
// is conservative per spec.md §4.6 — an ambiguous call site contributes an
// edge to every candidate that matches a known function, over-approximating
// reachability rather than under-approximating it, so a function is only
// ever reported dead if it is unreachable under every plausible resolution.
func BuildCallGraph(extracted []*model.Extracted, defs map[string]model.Definition, moduleNames map[string]bool) *graph.Graph {
	g := graph.New()
	for fullPath := range defs {
		g.AddNode(fullPath)
	}

	for _, ex := range extracted {
		for _, call := range ex.CallSites {
			candidates := pathresolver.Resolve(call.CalleeSurface, ex.UseMap, ex.ModuleCtx, moduleNames)
			resolved := pathresolver.AnyResolves(candidates, defsKeySet(defs))
			if len(resolved) == 0 {
				continue
			}
			caller := call.CallerFullPath
			if caller == "" {
				continue
			}
			g.AddNode(caller)
			for _, callee := range resolved {
				g.AddEdge(caller, callee)
			}
		}
	}
	return g
}

func defsKeySet(defs map[string]model.Definition) map[string]bool {
	set := make(map[string]bool, len(defs))
	for k := range defs {
		set[k] = true
	}
	return set
}

// DetectFunctions runs call-graph dead detection across the crate.
func DetectFunctions(mode model.Mode, defs map[string]model.Definition, g *graph.Graph, roots []string, ignore []string) Result {
	defined := make([]string, 0, len(defs))
	for fullPath, d := range defs {
		if d.Mode != mode {
			continue
		}
		defined = append(defined, fullPath)
	}
	sort.Strings(defined)

	reach := graph.Reach(g, roots)
	dead := graph.Dead(defined, reach)

	result := Result{Mode: mode, Total: len(defined), Reachable: len(reach)}
	for _, fullPath := range dead {
		d := defs[fullPath]
		if Ignored(d.Name, ignore) || Ignored(fullPath, ignore) {
			continue
		}
		result.Dead = append(result.Dead, Finding{
			Mode:       mode,
			Name:       d.Name,
			FullPath:   d.FullPath,
			File:       d.File,
			Line:       d.Line,
			Visibility: d.Visibility,
			IsMethod:   d.IsMethod,
			ParentType: d.ParentType,
		})
		if d.Visibility == model.VisibilityPublic {
			result.PublicDead++
		} else {
			result.PrivateDead++
		}
	}
	return result
}
