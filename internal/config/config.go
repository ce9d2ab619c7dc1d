// Package config loads deadmod's ignore-list configuration: the root
// `deadmod.toml` file spec.md §6 mandates, parsed with go-toml/v2, plus an
// optional per-directory `.deadmod.yaml` overlay (parsed with yaml.v3) that
// layers additional subtree-scoped ignore entries — a generalization of the
// single global list grounded in the teacher's pack-resolver config style.
package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ben-ranford/deadmod/internal/safeio"
)

// FileName is the root config file's name, relative to the crate root.
const FileName = "deadmod.toml"

// OverlayFileName is the optional per-directory overlay file's name.
const OverlayFileName = ".deadmod.yaml"

// Document is the deadmod.toml shape: `{ ignore = [string, ...] }`.
type Document struct {
	Ignore []string `toml:"ignore"`
}

type overlayDocument struct {
	Ignore []string `yaml:"ignore"`
}

// Load reads root/deadmod.toml. A missing or unparsable file yields a zero
// Document rather than an error — config is optional.
func Load(root string) Document {
	data, err := safeio.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Document{}
	}
	return doc
}

// LoadOverlay reads an optional .deadmod.yaml in dir, returning its ignore
// entries. A missing or unparsable overlay contributes nothing.
func LoadOverlay(dir string) []string {
	data, err := safeio.ReadFile(filepath.Join(dir, OverlayFileName))
	if err != nil {
		return nil
	}
	var doc overlayDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Ignore
}

// ResolveIgnoreList merges the CLI-provided ignore list, the root
// deadmod.toml's `ignore` entries, and per-directory .deadmod.yaml overlay
// entries gathered beneath root. Per spec.md §6, CLI-provided entries take
// precedence — here precedence only matters when the caller cares about
// provenance; for suppression purposes the merged set behaves identically
// regardless of source, since Ignored (internal/deadset) treats every entry
// in the merged list as an unconditional suppression pattern.
func ResolveIgnoreList(cliIgnore []string, root string, overlayDirs []string) []string {
	doc := Load(root)

	merged := make([]string, 0, len(cliIgnore)+len(doc.Ignore))
	merged = append(merged, cliIgnore...)
	merged = append(merged, doc.Ignore...)
	for _, dir := range overlayDirs {
		merged = append(merged, LoadOverlay(dir)...)
	}

	seen := make(map[string]bool, len(merged))
	out := merged[:0]
	for _, entry := range merged {
		entry = strings.TrimSpace(entry)
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}
