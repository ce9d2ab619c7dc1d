package rust

import (
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/ben-ranford/deadmod/internal/safeio"
)

// Manifest is the subset of a Cargo.toml this analyzer cares about: the
// crate's own name, and — for a workspace root — the member crate globs.
type Manifest struct {
	PackageName      string
	IsWorkspace      bool
	WorkspaceMembers []string
}

type cargoToml struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// LoadManifest reads and parses the Cargo.toml at manifestPath. A missing or
// unparsable manifest yields a zero-value Manifest rather than an error:
// root detection degrades gracefully when no manifest is present.
func LoadManifest(manifestPath string) Manifest {
	data, err := safeio.ReadFile(manifestPath)
	if err != nil {
		return Manifest{}
	}
	var doc cargoToml
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Manifest{}
	}
	manifest := Manifest{}
	if doc.Package != nil {
		manifest.PackageName = doc.Package.Name
	}
	if doc.Workspace != nil {
		manifest.IsWorkspace = true
		manifest.WorkspaceMembers = doc.Workspace.Members
	}
	return manifest
}

// ResolveWorkspaceMembers expands a workspace's member glob patterns
// (simple trailing "/*" globs as well as literal directory names) into
// absolute crate directories that actually contain a Cargo.toml.
func ResolveWorkspaceMembers(workspaceRoot string, patterns []string) []string {
	seen := make(map[string]bool)
	var members []string
	for _, pattern := range patterns {
		for _, dir := range expandMemberPattern(workspaceRoot, pattern) {
			manifestPath := filepath.Join(dir, "Cargo.toml")
			if _, err := safeio.ReadFile(manifestPath); err != nil {
				continue
			}
			normalized := filepath.ToSlash(dir)
			if seen[normalized] {
				continue
			}
			seen[normalized] = true
			members = append(members, normalized)
		}
	}
	sort.Strings(members)
	return members
}

func expandMemberPattern(workspaceRoot, pattern string) []string {
	full := filepath.Join(workspaceRoot, filepath.FromSlash(pattern))
	matches, err := filepath.Glob(full)
	if err != nil || len(matches) == 0 {
		return []string{full}
	}
	return matches
}
