package rust

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/ben-ranford/deadmod/internal/model"
)

// Extract walks content's syntax tree and produces the per-file definitions,
// references, module references and use-map the rest of the pipeline needs.
// A syntactically broken file never aborts the run: tree-sitter's
// error-tolerant parser still yields a best-effort tree, and Extract records
// a warning rather than failing.
func Extract(parser *Parser, file string, content []byte, ctx model.ModulePathContext) *model.Extracted {
	result := model.NewExtracted(file)
	result.ModuleCtx = ctx

	tree := parser.Parse(content)
	root := tree.RootNode()
	if root.HasError() {
		result.ParseError = true
		result.Warning = "syntax errors encountered; extraction is best-effort"
	}

	ex := &extractor{content: content, file: file, ctx: ctx, out: result}
	ex.walk(root, scopeContext{ownerPath: ctx.ModulePath})
	return result
}

type scopeContext struct {
	ownerPath  string
	ownerMode  model.Mode
	parentType string
}

type extractor struct {
	content []byte
	file    string
	ctx     model.ModulePathContext
	out     *model.Extracted
}

func (e *extractor) walk(node *sitter.Node, scope scopeContext) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "mod_item":
			e.handleMod(child, scope)
		case "use_declaration":
			e.handleUse(child)
		case "function_item", "function_signature_item":
			e.handleFunction(child, scope)
		case "impl_item":
			e.handleImpl(child, scope)
		case "trait_item":
			e.handleTrait(child, scope)
		case "const_item", "static_item":
			e.handleConst(child, scope)
		case "enum_item":
			e.handleEnum(child, scope)
		case "macro_definition":
			e.handleMacroDefinition(child, scope)
		case "macro_invocation":
			e.handleMacroInvocation(child)
		case "match_expression":
			e.handleMatch(child, scope)
		case "call_expression":
			e.handleCall(child, scope)
		default:
			// Every other node (item_list wrappers, attributes, struct
			// definitions, expression statements at item scope) may still
			// contain nested items worth descending into.
			e.walk(child, scope)
		}
	}
}

func (e *extractor) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(e.content[node.StartByte():node.EndByte()])
}

func (e *extractor) line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func (e *extractor) column(node *sitter.Node) int {
	return int(node.StartPoint().Column) + 1
}

func (e *extractor) visibilityOf(node *sitter.Node) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "visibility_modifier" {
			continue
		}
		text := e.text(child)
		switch {
		case text == "pub":
			return model.VisibilityPublic
		case strings.HasPrefix(text, "pub(crate)"):
			return model.VisibilityCrate
		case strings.HasPrefix(text, "pub(super)"):
			return model.VisibilitySuper
		case strings.HasPrefix(text, "pub(in"):
			return model.VisibilityRestricted
		default:
			return model.VisibilityPublic
		}
	}
	return model.VisibilityPrivate
}

func joinScope(ownerPath, name string) string {
	if ownerPath == "" {
		return name
	}
	return ownerPath + "::" + name
}

func (e *extractor) handleMod(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	fullPath := joinScope(scope.ownerPath, name)

	e.out.AddDefinition(model.ModeModule, model.Definition{
		Name:       name,
		FullPath:   fullPath,
		File:       e.file,
		Line:       e.line(node),
		Visibility: e.visibilityOf(node),
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		// `mod name;` — a file-backed module the root resolver must locate
		// on disk.
		e.out.ModuleRefs = append(e.out.ModuleRefs, name)
		return
	}
	// Inline `mod name { ... }` — descend with the nested module path.
	e.walk(body, scopeContext{ownerPath: fullPath})
}

func (e *extractor) handleUse(node *sitter.Node) {
	raw := e.text(node)
	clause := strings.TrimSuffix(strings.TrimSpace(raw), ";")
	clause = strings.TrimPrefix(clause, "pub ")
	clause = strings.TrimPrefix(strings.TrimSpace(clause), "use")
	clause = strings.TrimSpace(clause)

	for _, entry := range parseUseClause(clause) {
		local := entry.Local
		if local == "" {
			local = entry.Symbol
		}
		if local != "" && local != "*" {
			e.out.UseMap.ByAlias[local] = entry.Path
		}
		if entry.Symbol != "" && entry.Symbol != "*" {
			e.out.UseMap.ByTerminal[entry.Symbol] = entry.Path
		}
		// Module-graph edges only originate from crate-local paths — a
		// leading "crate"/"super"/"self"/the crate's own name, or a bare
		// path with no "::" at all (implicit crate-relative). An external
		// crate import still populates the UseMap above (needed for
		// call-graph resolution) but contributes no module-graph edge.
		if e.isCrateLocalPath(entry.Path) {
			e.out.AddReference(model.ModeModule, model.Reference{
				Name:   lastPathSegment(entry.Path),
				File:   e.file,
				Line:   e.line(node),
				Column: e.column(node),
			})
		}
		if e.isCrateLocalPath(entry.Path) && local != "" && local != "*" && local != entry.Symbol {
			e.out.AddReference(model.ModeModule, model.Reference{
				Name:   local,
				File:   e.file,
				Line:   e.line(node),
				Column: e.column(node),
			})
		}
	}
}

func (e *extractor) isCrateLocalPath(path string) bool {
	if !strings.Contains(path, "::") {
		return true
	}
	head := leadingSegment(path)
	switch head {
	case "crate", "super", "self":
		return true
	}
	return e.ctx.CrateName != "" && head == e.ctx.CrateName
}

func (e *extractor) handleFunction(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	fullPath := joinScope(scope.ownerPath, name)
	isMethod := scope.ownerMode == model.ModeTraitMethod || scope.parentType != ""
	mode := model.ModeFunction
	if isMethod {
		mode = model.ModeTraitMethod
	}

	e.out.AddDefinition(mode, model.Definition{
		Name:       name,
		FullPath:   fullPath,
		File:       e.file,
		Line:       e.line(node),
		Visibility: e.visibilityOf(node),
		IsMethod:   isMethod,
		ParentType: scope.parentType,
	})

	e.handleGenerics(node, fullPath, scope)

	bodyScope := scopeContext{ownerPath: fullPath, ownerMode: mode, parentType: scope.parentType}
	if body := node.ChildByFieldName("body"); body != nil {
		e.walkCallsAndRefs(body, fullPath, bodyScope)
	}
}

func (e *extractor) handleGenerics(node *sitter.Node, ownerFullPath string, scope scopeContext) {
	typeParams := node.ChildByFieldName("type_parameters")
	if typeParams == nil {
		return
	}
	var names []string
	for i := 0; i < int(typeParams.NamedChildCount()); i++ {
		child := typeParams.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "lifetime":
			name := e.text(child)
			names = append(names, name)
			e.out.AddDefinition(model.ModeGeneric, model.Definition{
				Name:     name,
				FullPath: joinScope(ownerFullPath, name),
				File:     e.file,
				Line:     e.line(child),
			})
		case "constrained_type_parameter", "optional_type_parameter":
			if left := child.ChildByFieldName("left"); left != nil {
				name := e.text(left)
				names = append(names, name)
				e.out.AddDefinition(model.ModeGeneric, model.Definition{
					Name:     name,
					FullPath: joinScope(ownerFullPath, name),
					File:     e.file,
					Line:     e.line(child),
				})
			}
		}
	}
	if len(names) == 0 {
		return
	}
	rest := node.ChildByFieldName("parameters")
	body := node.ChildByFieldName("body")
	declared := make(map[string]bool, len(names))
	for _, n := range names {
		declared[n] = true
	}
	checkUsage := func(n *sitter.Node) {
		if n == nil {
			return
		}
		e.forEachIdentifier(n, func(text string) {
			if declared[text] {
				e.out.AddReference(model.ModeGeneric, model.Reference{
					Name: joinScope(ownerFullPath, text),
					File: e.file,
					Line: e.line(n),
				})
			}
		})
	}
	checkUsage(rest)
	checkUsage(node.ChildByFieldName("return_type"))
	checkUsage(body)
}

func (e *extractor) forEachIdentifier(node *sitter.Node, fn func(text string)) {
	if node.Type() == "identifier" || node.Type() == "type_identifier" || node.Type() == "lifetime" {
		fn(e.text(node))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.forEachIdentifier(node.NamedChild(i), fn)
	}
}

func (e *extractor) handleImpl(node *sitter.Node, scope scopeContext) {
	typeNode := node.ChildByFieldName("type")
	parentType := e.text(typeNode)
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	implScope := scopeContext{ownerPath: scope.ownerPath, ownerMode: model.ModeTraitMethod, parentType: parentType}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "function_item" {
			e.handleFunction(child, implScope)
		}
	}
}

func (e *extractor) handleTrait(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	traitScope := scopeContext{ownerPath: scope.ownerPath, ownerMode: model.ModeTraitMethod, parentType: name}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "function_item", "function_signature_item":
			e.handleFunction(child, traitScope)
		}
	}
}

func (e *extractor) handleConst(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	fullPath := joinScope(scope.ownerPath, name)
	e.out.AddDefinition(model.ModeConstant, model.Definition{
		Name:       name,
		FullPath:   fullPath,
		File:       e.file,
		Line:       e.line(node),
		Visibility: e.visibilityOf(node),
	})
}

func (e *extractor) handleEnum(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	enumName := e.text(nameNode)
	enumPath := joinScope(scope.ownerPath, enumName)
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		variant := body.NamedChild(i)
		if variant.Type() != "enum_variant" {
			continue
		}
		variantNameNode := variant.ChildByFieldName("name")
		if variantNameNode == nil {
			continue
		}
		variantName := e.text(variantNameNode)
		e.out.AddDefinition(model.ModeEnumVariant, model.Definition{
			Name:       variantName,
			FullPath:   joinScope(enumPath, variantName),
			File:       e.file,
			Line:       e.line(variant),
			ParentType: enumName,
		})
	}
}

func (e *extractor) handleMacroDefinition(node *sitter.Node, scope scopeContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	// macro_rules! names are textually scoped, not module-path scoped the
	// way items are, and handleMacroInvocation records invocations by bare
	// name — key the definition the same way so a macro invoked from any
	// module still matches its definition.
	e.out.AddDefinition(model.ModeMacro, model.Definition{
		Name:       name,
		FullPath:   name,
		File:       e.file,
		Line:       e.line(node),
		Visibility: model.VisibilityPublic,
	})
}

func (e *extractor) handleMacroInvocation(node *sitter.Node) {
	macroNode := node.ChildByFieldName("macro")
	if macroNode == nil {
		return
	}
	name := lastPathSegment(e.text(macroNode))
	if name == "" {
		return
	}
	e.out.AddReference(model.ModeMacro, model.Reference{
		Name:   name,
		File:   e.file,
		Line:   e.line(node),
		Column: e.column(node),
	})
}

func (e *extractor) handleMatch(node *sitter.Node, scope scopeContext) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	group := fmt.Sprintf("%s:%d", e.file, e.line(node))
	for i := 0; i < int(body.NamedChildCount()); i++ {
		arm := body.NamedChild(i)
		if arm.Type() != "match_arm" {
			continue
		}
		pattern := arm.ChildByFieldName("pattern")
		hasGuard := arm.ChildByFieldName("condition") != nil
		patternText := e.text(pattern)
		e.out.AddDefinition(model.ModeMatchArm, model.Definition{
			Name:     patternText,
			FullPath: joinScope(scope.ownerPath, patternText) + "@" + group,
			File:     e.file,
			Line:     e.line(arm),
			Guarded:  hasGuard,
			Group:    group,
		})
	}
}

func (e *extractor) handleCall(node *sitter.Node, scope scopeContext) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	switch fn.Type() {
	case "identifier":
		e.recordCallSite(scope.ownerPath, e.text(fn), fn)
	case "scoped_identifier", "field_expression":
		e.recordCallSite(scope.ownerPath, lastPathSegment(e.text(fn)), fn)
	}
}

func (e *extractor) recordCallSite(callerFullPath, callee string, node *sitter.Node) {
	if callee == "" {
		return
	}
	e.out.CallSites = append(e.out.CallSites, model.CallSite{
		CallerFullPath: callerFullPath,
		CalleeSurface:  callee,
		File:           e.file,
		Line:           e.line(node),
	})
}

// walkCallsAndRefs descends into a function body collecting call sites and
// enum-variant / constant surface references, attributing each to the
// enclosing function.
func (e *extractor) walkCallsAndRefs(node *sitter.Node, ownerFullPath string, scope scopeContext) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "call_expression":
			e.handleCall(child, scope)
		case "function_item":
			e.handleFunction(child, scope)
			continue
		case "macro_invocation":
			e.handleMacroInvocation(child)
		case "match_expression":
			e.handleMatch(child, scope)
		case "scoped_identifier":
			e.handlePossibleReference(child, scope)
		case "identifier":
			e.handlePossibleReference(child, scope)
		}
		e.walkCallsAndRefs(child, ownerFullPath, scope)
	}
}

// handlePossibleReference records a candidate constant or enum-variant
// reference from a path-expression or bare identifier site: a
// scoped_identifier like "Foo::A" or "crate::util::MAX", or a bare
// identifier like "Circle" (an imported variant in a match pattern) or
// "MAX" (a same-module constant). Resolution is conservative the same way
// call-site resolution is (spec.md §4.6/§9): since the syntactic shape
// alone cannot tell a constant use from an enum-variant use, the resolved
// name is recorded against both modes — each mode's own dead-detection
// only matches it against its own definitions, so the cross-registration
// never turns an actually-dead entity live in the wrong mode.
func (e *extractor) handlePossibleReference(node *sitter.Node, scope scopeContext) {
	if node.Parent() != nil {
		switch node.Parent().Type() {
		case "call_expression", "macro_invocation", "use_declaration", "mod_item", "scoped_identifier":
			return
		}
	}
	text := e.text(node)
	segment := lastPathSegment(text)
	if segment == "" || !startsUpper(segment) {
		return
	}
	ref := model.Reference{
		Name:   e.resolvePathReference(text),
		File:   e.file,
		Line:   e.line(node),
		Column: e.column(node),
	}
	e.out.AddReference(model.ModeEnumVariant, ref)
	e.out.AddReference(model.ModeConstant, ref)
}

// resolvePathReference normalizes a path-expression's surface text to the
// same module-qualified form Definition.FullPath uses: a leading
// "crate::"/crate-name prefix is stripped (matching isCrateLocalPath's
// crate-relative handling for `use` clauses), a leading "self::" is
// replaced with the current module path, and anything else — a bare name
// or a path with no crate-relative head — is treated as relative to the
// current file's module path.
func (e *extractor) resolvePathReference(text string) string {
	switch {
	case strings.HasPrefix(text, "crate::"):
		return strings.TrimPrefix(text, "crate::")
	case strings.HasPrefix(text, "self::"):
		return joinScope(e.ctx.ModulePath, strings.TrimPrefix(text, "self::"))
	case e.ctx.CrateName != "" && strings.HasPrefix(text, e.ctx.CrateName+"::"):
		return strings.TrimPrefix(text, e.ctx.CrateName+"::")
	default:
		return joinScope(e.ctx.ModulePath, text)
	}
}

func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}
