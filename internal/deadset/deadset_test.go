package deadset

import (
	"testing"

	"github.com/ben-ranford/deadmod/internal/model"
)

func TestDetectFindsUnreferencedConstant(t *testing.T) {
	defs := []model.Definition{
		{Name: "USED", FullPath: "util::USED", Visibility: model.VisibilityPublic},
		{Name: "UNUSED", FullPath: "util::UNUSED", Visibility: model.VisibilityPublic},
	}
	refs := []model.Reference{{Name: "util::USED"}}

	result := Detect(model.ModeConstant, defs, refs, nil)
	if len(result.Dead) != 1 || result.Dead[0].FullPath != "util::UNUSED" {
		t.Fatalf("expected util::UNUSED dead, got %#v", result.Dead)
	}
	if result.PublicDead != 1 {
		t.Fatalf("expected 1 public dead, got %d", result.PublicDead)
	}
}

func TestDetectHonoursIgnoreList(t *testing.T) {
	defs := []model.Definition{{Name: "legacy_helper", FullPath: "util::legacy_helper"}}
	result := Detect(model.ModeFunction, defs, nil, []string{"legacy_"})
	if len(result.Dead) != 0 {
		t.Fatalf("expected ignore-list substring match to suppress finding, got %#v", result.Dead)
	}
}

func TestIgnoredMatchesExactSuffixAndSubstring(t *testing.T) {
	if !Ignored("foo", []string{"foo"}) {
		t.Fatal("expected exact match ignored")
	}
	if !Ignored("crate::foo", []string{"foo"}) {
		t.Fatal("expected suffix match ignored")
	}
	if !Ignored("foobar", []string{"oob"}) {
		t.Fatal("expected substring match ignored")
	}
	if Ignored("bar", []string{"foo"}) {
		t.Fatal("expected no match")
	}
}

func TestDetectModulesScenarioOne(t *testing.T) {
	entities := map[string]model.ModuleEntity{
		"main": {Name: "main", Path: "src/main.rs", References: []string{"a"}},
		"a":    {Name: "a", Path: "src/a.rs", References: []string{"b"}},
		"b":    {Name: "b", Path: "src/a/b.rs"},
		"c":    {Name: "c", Path: "src/c.rs"},
	}
	result := DetectModules(entities, []string{"main"}, nil)
	if len(result.Dead) != 1 || result.Dead[0].Name != "c" {
		t.Fatalf("expected dead=[c], got %#v", result.Dead)
	}
}

func TestDetectModulesRootAlwaysReachable(t *testing.T) {
	entities := map[string]model.ModuleEntity{}
	result := DetectModules(entities, []string{"main"}, nil)
	if len(result.Dead) != 0 {
		t.Fatalf("expected no dead modules for empty crate, got %#v", result.Dead)
	}
}
