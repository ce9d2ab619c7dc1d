package pathresolver

import (
	"reflect"
	"testing"

	"github.com/ben-ranford/deadmod/internal/model"
)

func TestResolvePrioritizesAlias(t *testing.T) {
	useMap := model.NewUseMap()
	useMap.ByAlias["q"] = "crate::util::query"
	ctx := model.ModulePathContext{CrateName: "demo", ModulePath: "app"}

	got := Resolve("q", useMap, ctx, map[string]bool{})
	if len(got) == 0 || got[0] != "crate::util::query" {
		t.Fatalf("expected alias candidate first, got %#v", got)
	}
}

func TestResolveFallsBackToSameModuleThenCrateRoot(t *testing.T) {
	ctx := model.ModulePathContext{CrateName: "demo", ModulePath: "app::handlers"}
	got := Resolve("helper", nil, ctx, map[string]bool{})
	want := []string{"app::handlers::helper", "demo::helper"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestAnyResolvesFiltersToKnownCallees(t *testing.T) {
	candidates := []string{"a::b", "c::d"}
	known := map[string]bool{"c::d": true}
	got := AnyResolves(candidates, known)
	if len(got) != 1 || got[0] != "c::d" {
		t.Fatalf("expected only c::d, got %#v", got)
	}
}

func TestResolveDeduplicatesCandidates(t *testing.T) {
	ctx := model.ModulePathContext{CrateName: "demo", ModulePath: "demo"}
	got := Resolve("helper", nil, ctx, map[string]bool{})
	if len(got) != 1 || got[0] != "demo::helper" {
		t.Fatalf("expected single deduped candidate when module path equals crate root, got %#v", got)
	}
}
