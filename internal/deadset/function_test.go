package deadset

import (
	"testing"

	"github.com/ben-ranford/deadmod/internal/model"
)

func extractedWithFunctions() *model.Extracted {
	ex := model.NewExtracted("src/lib.rs")
	ex.AddDefinition(model.ModeFunction, model.Definition{
		Name: "main", FullPath: "main", Visibility: model.VisibilityPrivate,
	})
	ex.AddDefinition(model.ModeFunction, model.Definition{
		Name: "used_helper", FullPath: "app::used_helper", Visibility: model.VisibilityPrivate,
	})
	ex.AddDefinition(model.ModeFunction, model.Definition{
		Name: "dead_helper", FullPath: "app::dead_helper", Visibility: model.VisibilityPrivate,
	})
	ex.ModuleCtx = model.ModulePathContext{CrateName: "app", ModulePath: "app"}
	ex.CallSites = []model.CallSite{
		{CallerFullPath: "main", CalleeSurface: "used_helper"},
	}
	return ex
}

func TestFunctionDefsCollectsAcrossFiles(t *testing.T) {
	ex := extractedWithFunctions()
	defs := FunctionDefs([]*model.Extracted{ex})
	if len(defs) != 3 {
		t.Fatalf("expected 3 defs, got %d", len(defs))
	}
	if _, ok := defs["app::dead_helper"]; !ok {
		t.Fatalf("expected app::dead_helper present, got %#v", defs)
	}
}

func TestBuildCallGraphResolvesSameModuleCallee(t *testing.T) {
	ex := extractedWithFunctions()
	defs := FunctionDefs([]*model.Extracted{ex})
	g := BuildCallGraph([]*model.Extracted{ex}, defs, map[string]bool{"app": true})

	if !g.HasNode("main") || !g.HasNode("app::used_helper") {
		t.Fatalf("expected both endpoints present as nodes")
	}
	succ := g.Successors("main")
	found := false
	for _, s := range succ {
		if s == "app::used_helper" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected main -> app::used_helper edge, got %#v", succ)
	}
}

func TestDetectFunctionsFindsUnreachableHelper(t *testing.T) {
	ex := extractedWithFunctions()
	defs := FunctionDefs([]*model.Extracted{ex})
	g := BuildCallGraph([]*model.Extracted{ex}, defs, map[string]bool{"app": true})

	result := DetectFunctions(model.ModeFunction, defs, g, []string{"main"}, nil)
	if len(result.Dead) != 1 || result.Dead[0].FullPath != "app::dead_helper" {
		t.Fatalf("expected app::dead_helper dead, got %#v", result.Dead)
	}
}

func TestDetectFunctionsHonoursIgnoreList(t *testing.T) {
	ex := extractedWithFunctions()
	defs := FunctionDefs([]*model.Extracted{ex})
	g := BuildCallGraph([]*model.Extracted{ex}, defs, map[string]bool{"app": true})

	result := DetectFunctions(model.ModeFunction, defs, g, []string{"main"}, []string{"dead_helper"})
	if len(result.Dead) != 0 {
		t.Fatalf("expected ignore list to suppress dead_helper, got %#v", result.Dead)
	}
}
