package deadset

import (
	"sort"

	"github.com/ben-ranford/deadmod/internal/graph"
	"github.com/ben-ranford/deadmod/internal/model"
)

// DetectModules runs module-mode dead detection: the module graph's nodes
// are module names (a module's identity is its name within the crate, per
// spec.md §3), edges are the outbound `mod`/`use` references a module's
// owning file contains, and roots are the entry-point module names spec.md
// §4.4 identifies. Root nodes are always reachable even if absent from the
// entity map — spec.md §3's invariant that an entry point with an empty
// file still seeds reachability.
func DetectModules(entities map[string]model.ModuleEntity, roots []string, ignore []string) Result {
	g := graph.New()
	for name, entity := range entities {
		g.AddNode(name)
		for _, ref := range entity.References {
			g.AddEdge(name, ref)
		}
	}
	for _, root := range roots {
		g.AddNode(root)
	}

	reach := graph.Reach(g, roots)

	defined := make([]string, 0, len(entities))
	for name := range entities {
		defined = append(defined, name)
	}
	sort.Strings(defined)

	dead := graph.Dead(defined, reach)
	result := Result{Mode: model.ModeModule, Total: len(defined), Reachable: len(reach)}

	for _, name := range dead {
		entity := entities[name]
		if Ignored(name, ignore) {
			continue
		}
		vis := model.VisibilityPrivate
		result.Dead = append(result.Dead, Finding{
			Mode:       model.ModeModule,
			Name:       name,
			FullPath:   name,
			File:       entity.Path,
			Visibility: vis,
		})
		result.PrivateDead++
	}
	return result
}
