// Package deadset implements the per-mode Dead Detection orchestration of
// spec.md §4.7: each of the eight analysis modes follows the same schema
// — extract(defs, refs) → graph → reach(roots) → dead = defs \ reach — with
// mode-specific rules layered on top for generics, match arms, and enum
// variants.
package deadset

import (
	"sort"

	"github.com/ben-ranford/deadmod/internal/graph"
	"github.com/ben-ranford/deadmod/internal/model"
)

// Finding is one dead entity, annotated with the metadata spec.md §6's
// report shapes require.
type Finding struct {
	Mode       model.Mode
	Name       string
	FullPath   string
	File       string
	Line       int
	Visibility model.Visibility
	IsMethod   bool
	ParentType string
	// NonFinalWildcard marks a ModeMatchArm finding whose pattern is a bare
	// "_" that is not the match's last arm — flagged separately from dead
	// per spec.md §4.7, never itself "dead".
	NonFinalWildcard bool
}

// Result is one mode's complete dead-detection outcome.
type Result struct {
	Mode       model.Mode
	Total      int
	Reachable  int
	Dead       []Finding
	PublicDead int
	PrivateDead int
}

// syntheticRoot is the graph node every reference edge in a "referenced
// anywhere" mode fans out from, modelling "used at all" as reachability
// from one universal seed rather than a crate entry point.
const syntheticRoot = "\x00root"

// buildReferencedAnywhereGraph builds the graph used by every mode whose
// liveness question is "is this name referenced anywhere in the crate",
// rather than "is this name reachable from a crate entry point" — spec.md
// §4.7's generic, macro, constant, and enum-variant modes. For
// ModeEnumVariant only, a reference also wires to every definition sharing
// its bare (unqualified) name — spec.md §4.7's "bare Variant occurrences
// in scopes where the enum is imported" — since the extractor has no type
// information to tell which enum a bare variant name belongs to; this is
// deliberately more permissive than the other three modes, which require
// an exact full-path match (a generic's or constant's identity is scoped
// to its owner, so bare-name aliasing there would wrongly mark unrelated
// definitions live).
func buildReferencedAnywhereGraph(mode model.Mode, defs []model.Definition, refs []model.Reference) (*graph.Graph, []string) {
	g := graph.New()
	g.AddNode(syntheticRoot)

	defined := make([]string, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	byBareName := make(map[string][]string, len(defs))
	for _, d := range defs {
		g.AddNode(d.FullPath)
		if !seen[d.FullPath] {
			seen[d.FullPath] = true
			defined = append(defined, d.FullPath)
		}
		byBareName[d.Name] = append(byBareName[d.Name], d.FullPath)
	}
	for _, r := range refs {
		g.AddEdge(syntheticRoot, r.Name)
		if mode != model.ModeEnumVariant {
			continue
		}
		for _, full := range byBareName[lastSegment(r.Name)] {
			g.AddEdge(syntheticRoot, full)
		}
	}
	return g, defined
}

func lastSegment(path string) string {
	idx := -1
	for i := 0; i+1 < len(path); i++ {
		if path[i] == ':' && path[i+1] == ':' {
			idx = i
		}
	}
	if idx == -1 {
		return path
	}
	return path[idx+2:]
}

// Detect runs the shared schema for a referenced-anywhere mode and applies
// the ignore list (spec.md §6: suppressed on exact match, suffix match, or
// substring containment, in that priority order).
func Detect(mode model.Mode, defs []model.Definition, refs []model.Reference, ignore []string) Result {
	g, defined := buildReferencedAnywhereGraph(mode, defs, refs)
	reach := graph.Reach(g, []string{syntheticRoot})

	byFullPath := make(map[string]model.Definition, len(defs))
	for _, d := range defs {
		byFullPath[d.FullPath] = d
	}

	dead := graph.Dead(defined, reach)
	result := Result{Mode: mode, Total: len(defined), Reachable: len(reach) - 1}

	for _, fullPath := range dead {
		d, ok := byFullPath[fullPath]
		if !ok {
			continue
		}
		if Ignored(d.Name, ignore) || Ignored(fullPath, ignore) {
			continue
		}
		finding := Finding{
			Mode:       mode,
			Name:       d.Name,
			FullPath:   d.FullPath,
			File:       d.File,
			Line:       d.Line,
			Visibility: d.Visibility,
			IsMethod:   d.IsMethod,
			ParentType: d.ParentType,
		}
		result.Dead = append(result.Dead, finding)
		if d.Visibility == model.VisibilityPublic {
			result.PublicDead++
		} else {
			result.PrivateDead++
		}
	}

	sort.Slice(result.Dead, func(i, j int) bool { return result.Dead[i].FullPath < result.Dead[j].FullPath })
	return result
}

// Ignored reports whether name is suppressed by the ignore list: exact
// match, suffix match, or substring containment, checked in that order
// (spec.md §6).
func Ignored(name string, ignore []string) bool {
	for _, pattern := range ignore {
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
	}
	for _, pattern := range ignore {
		if pattern == "" {
			continue
		}
		if hasSuffix(name, pattern) {
			return true
		}
	}
	for _, pattern := range ignore {
		if pattern == "" {
			continue
		}
		if contains(name, pattern) {
			return true
		}
	}
	return false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func contains(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
