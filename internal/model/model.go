// Package model holds the data types shared across the scanner, cache,
// extractor, graph, and fixer stages of the analysis pipeline.
package model

// Mode identifies one of the eight analysis modes the extractor produces
// (defs, refs) tuples for.
type Mode string

const (
	ModeModule      Mode = "module"
	ModeFunction    Mode = "function"
	ModeTraitMethod Mode = "trait_method"
	ModeGeneric     Mode = "generic"
	ModeMacro       Mode = "macro"
	ModeConstant    Mode = "constant"
	ModeEnumVariant Mode = "enum_variant"
	ModeMatchArm    Mode = "match_arm"
)

// Modes lists every analysis mode in the order findings are grouped for
// reporting.
var Modes = []Mode{
	ModeModule,
	ModeFunction,
	ModeTraitMethod,
	ModeGeneric,
	ModeMacro,
	ModeConstant,
	ModeEnumVariant,
	ModeMatchArm,
}

// Visibility is the syntactic visibility tag on a definition.
type Visibility string

const (
	VisibilityPrivate    Visibility = "private"
	VisibilityPublic     Visibility = "pub"
	VisibilityCrate      Visibility = "pub(crate)"
	VisibilitySuper      Visibility = "pub(super)"
	VisibilityRestricted Visibility = "pub(in)"
)

// FileRecord is a scanned source file identified by its normalized path.
type FileRecord struct {
	Path string
	Hash string
}

// ModuleEntity describes one `mod NAME` declared somewhere in the crate,
// either a file-backed module (`mod NAME;`) or an inline module
// (`mod NAME { ... }`).
type ModuleEntity struct {
	Name       string
	Path       string
	ParentFile string
	Inline     bool
	References []string
}

// FunctionDef is a function/method definition found during call-graph
// extraction.
type FunctionDef struct {
	Name       string
	FullPath   string
	File       string
	Line       int
	IsMethod   bool
	ParentType string
	Visibility Visibility
}

// CallSite is a transient call expression resolved against a UseMap.
type CallSite struct {
	CallerFullPath string
	CalleeSurface  string
	File           string
	Line           int
}

// UseMap maps a file's local aliases and terminal names to the full
// symbolic path they resolve to. Rebuilt fresh for every parse.
type UseMap struct {
	// ByAlias maps an alias introduced by `use a::b as c` to the full path.
	ByAlias map[string]string
	// ByTerminal maps the last segment of every `use` path to the full path.
	ByTerminal map[string]string
}

func NewUseMap() *UseMap {
	return &UseMap{
		ByAlias:    make(map[string]string),
		ByTerminal: make(map[string]string),
	}
}

func (m *UseMap) Resolve(surfaceName string) (string, bool) {
	if m == nil {
		return "", false
	}
	if full, ok := m.ByAlias[surfaceName]; ok {
		return full, true
	}
	if full, ok := m.ByTerminal[surfaceName]; ok {
		return full, true
	}
	return "", false
}

// ModulePathContext carries the dotted module path of the file currently
// being extracted, plus the owning crate's name.
type ModulePathContext struct {
	CrateName  string
	ModulePath string
}

// Definition is one syntactic entity defined in a file, for a given mode.
type Definition struct {
	Mode       Mode
	Name       string
	FullPath   string
	File       string
	Line       int
	Visibility Visibility
	IsMethod   bool
	ParentType string
	// Guarded is set for ModeMatchArm definitions whose arm carries an
	// `if` guard — a guarded catch-all pattern is refutable and cannot
	// shadow the arms that follow it the way a bare one can.
	Guarded bool
	// Group identifies the owning syntactic construct a definition belongs
	// to, when dead-detection must reason about order/position within that
	// construct rather than whole-crate reachability — currently only used
	// to group ModeMatchArm definitions by their enclosing match_expression.
	Group string
}

// Reference is a syntactic site that uses/mentions a named entity.
type Reference struct {
	Mode   Mode
	Name   string
	File   string
	Line   int
	Column int
}

// Extracted is the per-file output of the parser/extractor: every entity
// the file defines and every name it references, partitioned by mode.
type Extracted struct {
	File        string
	Definitions map[Mode][]Definition
	References  map[Mode][]Reference
	// ModuleRefs are the child-file references a `mod NAME;` declaration
	// contributes (distinct from References[ModeModule], which also
	// includes `use` terminal segments).
	ModuleRefs []string
	UseMap     *UseMap
	ModuleCtx  ModulePathContext
	// CallSites are caller/callee pairs discovered in this file, keyed to
	// the owning definition's FullPath rather than resolved to a target —
	// resolution against the UseMap happens in the path resolver.
	CallSites  []CallSite
	ParseError bool
	Warning    string
}

// AddDefinition records def under mode, initializing the slice on first use.
func (e *Extracted) AddDefinition(mode Mode, def Definition) {
	def.Mode = mode
	e.Definitions[mode] = append(e.Definitions[mode], def)
}

// AddReference records ref under mode, initializing the slice on first use.
func (e *Extracted) AddReference(mode Mode, ref Reference) {
	ref.Mode = mode
	e.References[mode] = append(e.References[mode], ref)
}

func NewExtracted(file string) *Extracted {
	return &Extracted{
		File:        file,
		Definitions: make(map[Mode][]Definition),
		References:  make(map[Mode][]Reference),
		UseMap:      NewUseMap(),
	}
}

// CacheRecord is the persisted (content hash, outbound references) pair
// keyed by file path.
type CacheRecord struct {
	Hash string   `json:"hash"`
	Refs []string `json:"refs"`
}
