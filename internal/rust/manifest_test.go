package rust

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ben-ranford/deadmod/internal/testutil"
)

func TestLoadManifestParsesPackageName(t *testing.T) {
	root := t.TempDir()
	manifestPath := filepath.Join(root, "Cargo.toml")
	testutil.MustWriteFile(t, manifestPath, "[package]\nname = \"demo\"\n")

	manifest := LoadManifest(manifestPath)
	if manifest.PackageName != "demo" {
		t.Fatalf("expected package name demo, got %q", manifest.PackageName)
	}
	if manifest.IsWorkspace {
		t.Fatalf("expected non-workspace manifest")
	}
}

func TestLoadManifestParsesWorkspaceMembers(t *testing.T) {
	root := t.TempDir()
	manifestPath := filepath.Join(root, "Cargo.toml")
	testutil.MustWriteFile(t, manifestPath, "[workspace]\nmembers = [\"crates/*\"]\n")

	manifest := LoadManifest(manifestPath)
	if !manifest.IsWorkspace {
		t.Fatalf("expected workspace manifest")
	}
	want := []string{"crates/*"}
	if !reflect.DeepEqual(manifest.WorkspaceMembers, want) {
		t.Fatalf("got %#v, want %#v", manifest.WorkspaceMembers, want)
	}
}

func TestLoadManifestMissingFileYieldsZeroValue(t *testing.T) {
	manifest := LoadManifest(filepath.Join(t.TempDir(), "Cargo.toml"))
	if manifest.PackageName != "" || manifest.IsWorkspace {
		t.Fatalf("expected zero-value manifest for missing file, got %#v", manifest)
	}
}

func TestResolveWorkspaceMembersExpandsGlobAndRequiresManifest(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "crates", "a", "Cargo.toml"), "[package]\nname = \"a\"\n")
	testutil.MustWriteFile(t, filepath.Join(root, "crates", "b", "Cargo.toml"), "[package]\nname = \"b\"\n")
	testutil.MustWriteFile(t, filepath.Join(root, "crates", "c", "placeholder.txt"), "")

	members := ResolveWorkspaceMembers(root, []string{"crates/*"})
	if len(members) != 2 {
		t.Fatalf("expected 2 members with a Cargo.toml, got %#v", members)
	}
	for _, m := range members {
		if filepath.Base(m) == "c" {
			t.Fatalf("expected crate c without a manifest to be excluded, got %#v", members)
		}
	}
}
