package rust

import (
	"reflect"
	"testing"
)

func TestChildModulePathsFromCrateRootFile(t *testing.T) {
	got := ChildModulePaths("src/main.rs", "a")
	want := []string{"src/a.rs", "src/a/mod.rs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestChildModulePathsFromNonRootFileOwnsSiblingDirectory(t *testing.T) {
	got := ChildModulePaths("src/a.rs", "b")
	want := []string{"src/a/b.rs", "src/a/b/mod.rs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestChildModulePathsFromModRsOwnsItsOwnDirectory(t *testing.T) {
	got := ChildModulePaths("src/a/mod.rs", "b")
	want := []string{"src/a/b.rs", "src/a/b/mod.rs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestModuleNameForFileSpecialCasesMainLibMod(t *testing.T) {
	cases := map[string]string{
		"src/main.rs":     "main",
		"src/lib.rs":      "lib",
		"src/a/mod.rs":     "a",
		"src/a.rs":        "a",
		"src/a/b.rs":      "b",
	}
	for file, want := range cases {
		if got := ModuleNameForFile(file); got != want {
			t.Fatalf("ModuleNameForFile(%q) = %q, want %q", file, got, want)
		}
	}
}
