package fixer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/testutil"
)

func TestFixRemovesFileAndDeclaration(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Join(root, "src", "lib.rs")
	testutil.MustWriteFile(t, parent, "fn main() {}\n\nmod dead;\nmod kept;\n")
	deadPath := filepath.Join(root, "src", "dead.rs")
	testutil.MustWriteFile(t, deadPath, "pub fn unused() {}\n")

	entities := map[string]model.ModuleEntity{
		"dead": {Name: "dead", Path: deadPath, ParentFile: parent},
	}

	result := Fix(root, []string{"dead"}, entities, false)

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %#v", result.Errors)
	}
	if len(result.RemovedFiles) != 1 || result.RemovedFiles[0] != deadPath {
		t.Fatalf("expected dead.rs removed, got %#v", result.RemovedFiles)
	}
	if _, err := os.Stat(deadPath); !os.IsNotExist(err) {
		t.Fatalf("expected dead.rs deleted from disk")
	}

	rewritten, err := os.ReadFile(parent)
	if err != nil {
		t.Fatalf("read parent: %v", err)
	}
	if strings.Contains(string(rewritten), "mod dead;") {
		t.Fatalf("expected mod dead; removed, got %q", rewritten)
	}
	if !strings.Contains(string(rewritten), "mod kept;") {
		t.Fatalf("expected mod kept; preserved, got %q", rewritten)
	}
}

func TestFixRefusesSymlinkTarget(t *testing.T) {
	root := t.TempDir()
	realFile := filepath.Join(root, "real.rs")
	testutil.MustWriteFile(t, realFile, "pub fn unused() {}\n")
	linkPath := filepath.Join(root, "src", "dead.rs")
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(realFile, linkPath); err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}

	entities := map[string]model.ModuleEntity{
		"dead": {Name: "dead", Path: linkPath},
	}
	result := Fix(root, []string{"dead"}, entities, false)

	if len(result.Errors) == 0 {
		t.Fatalf("expected a symlink-refusal error")
	}
	if len(result.RemovedFiles) != 0 {
		t.Fatalf("expected no removals when target is a symlink, got %#v", result.RemovedFiles)
	}
	if _, err := os.Lstat(linkPath); err != nil {
		t.Fatalf("expected symlink left untouched: %v", err)
	}
}

func TestFixDryRunLeavesFilesystemUntouched(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Join(root, "src", "lib.rs")
	testutil.MustWriteFile(t, parent, "mod dead;\n")
	deadPath := filepath.Join(root, "src", "dead.rs")
	testutil.MustWriteFile(t, deadPath, "pub fn unused() {}\n")

	entities := map[string]model.ModuleEntity{
		"dead": {Name: "dead", Path: deadPath, ParentFile: parent},
	}

	result := Fix(root, []string{"dead"}, entities, true)

	if len(result.RemovedFiles) != 1 {
		t.Fatalf("expected dry-run to still report the file it would remove, got %#v", result.RemovedFiles)
	}
	if _, err := os.Stat(deadPath); err != nil {
		t.Fatalf("expected dead.rs left on disk during dry-run: %v", err)
	}
	data, err := os.ReadFile(parent)
	if err != nil {
		t.Fatalf("read parent: %v", err)
	}
	if !strings.Contains(string(data), "mod dead;") {
		t.Fatalf("expected parent file left untouched during dry-run, got %q", data)
	}
}

func TestFixPrunesEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Join(root, "src", "lib.rs")
	testutil.MustWriteFile(t, parent, "mod dead;\n")
	deadPath := filepath.Join(root, "src", "nested", "dead.rs")
	testutil.MustWriteFile(t, deadPath, "pub fn unused() {}\n")

	entities := map[string]model.ModuleEntity{
		"dead": {Name: "dead", Path: deadPath, ParentFile: parent},
	}

	result := Fix(root, []string{"dead"}, entities, false)

	nestedDir := filepath.Join(root, "src", "nested")
	if _, err := os.Stat(nestedDir); !os.IsNotExist(err) {
		t.Fatalf("expected nested/ pruned after its only file was removed")
	}
	found := false
	for _, d := range result.RemovedDirectories {
		if d == nestedDir {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected nested dir reported removed, got %#v", result.RemovedDirectories)
	}
}

func TestPruneEmptyDirectoriesStopsAtSrc(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "src")
	if err := os.MkdirAll(srcDir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	removed := pruneEmptyDirectories(root, map[string]bool{srcDir: true})
	if len(removed) != 0 {
		t.Fatalf("expected src/ itself never pruned, got %#v", removed)
	}
	if _, err := os.Stat(srcDir); err != nil {
		t.Fatalf("expected src/ left on disk: %v", err)
	}
}

func TestModDeclPatternMatchesAllVisibilitySpellings(t *testing.T) {
	cases := []string{
		"mod dead;",
		"pub mod dead;",
		"pub(crate) mod dead;",
		"pub(super) mod dead;",
		"pub(in crate::util) mod dead;",
		"  mod dead;  ",
	}
	pattern := modDeclPattern("dead")
	for _, c := range cases {
		if !pattern.MatchString(c) {
			t.Fatalf("expected pattern to match %q", c)
		}
	}
	if pattern.MatchString("mod deadline;") {
		t.Fatalf("expected pattern not to match a module with dead as a prefix")
	}
}

func TestCollapseBlankRunsCollapsesThreeOrMoreBlanksToOne(t *testing.T) {
	in := []string{"a", "", "", "", "b"}
	out := collapseBlankRuns(in)
	want := []string{"a", "", "b"}
	if len(out) != len(want) {
		t.Fatalf("got %#v, want %#v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %#v, want %#v", out, want)
		}
	}
}
