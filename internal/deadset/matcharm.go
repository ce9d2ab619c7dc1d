package deadset

import (
	"sort"

	"github.com/ben-ranford/deadmod/internal/model"
)

func matchArmGuarded(d model.Definition) bool {
	return d.Guarded
}

// DetectMatchArms implements spec.md §4.7's match-arm rules. Unlike the
// other seven modes this is not a graph-reachability question: liveness is
// positional within one match expression. An arm is dead when (a) an
// earlier unconditional (unguarded) arm with an identical pattern already
// matched everything it could, or (b) a bare wildcard `_` appeared before
// it. A bare wildcard that is not the match's last arm is additionally
// flagged NonFinalWildcard — that flag is informational, never itself
// "dead".
func DetectMatchArms(extracted []*model.Extracted, ignore []string) Result {
	var groups []string
	byGroup := make(map[string][]model.Definition)
	for _, ex := range extracted {
		for _, d := range ex.Definitions[model.ModeMatchArm] {
			if _, ok := byGroup[d.Group]; !ok {
				groups = append(groups, d.Group)
			}
			byGroup[d.Group] = append(byGroup[d.Group], d)
		}
	}
	sort.Strings(groups)

	result := Result{Mode: model.ModeMatchArm}
	for _, group := range groups {
		arms := byGroup[group]
		result.Total += len(arms)
		seenUnconditional := make(map[string]bool)
		wildcardSeen := false

		for i, arm := range arms {
			guarded := matchArmGuarded(arm)
			isWildcard := arm.Name == "_"

			if isWildcard && i != len(arms)-1 {
				result.Dead = append(result.Dead, Finding{
					Mode:             model.ModeMatchArm,
					Name:             arm.Name,
					FullPath:         arm.FullPath,
					File:             arm.File,
					Line:             arm.Line,
					NonFinalWildcard: true,
				})
			}

			dead := false
			if wildcardSeen {
				dead = true
			} else if !guarded && seenUnconditional[arm.Name] {
				dead = true
			}

			if dead && !Ignored(arm.Name, ignore) {
				result.Dead = append(result.Dead, Finding{
					Mode:     model.ModeMatchArm,
					Name:     arm.Name,
					FullPath: arm.FullPath,
					File:     arm.File,
					Line:     arm.Line,
				})
				result.PrivateDead++
			} else if !dead {
				result.Reachable++
			}

			if !guarded {
				seenUnconditional[arm.Name] = true
				if isWildcard {
					wildcardSeen = true
				}
			}
		}
	}

	sort.Slice(result.Dead, func(i, j int) bool {
		if result.Dead[i].File != result.Dead[j].File {
			return result.Dead[i].File < result.Dead[j].File
		}
		return result.Dead[i].Line < result.Dead[j].Line
	})
	return result
}
