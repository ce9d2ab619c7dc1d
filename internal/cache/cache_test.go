package cache

import (
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadMissingCacheIsEmpty(t *testing.T) {
	doc := Load(t.TempDir())
	if len(doc.Modules) != 0 {
		t.Fatalf("expected empty modules, got %#v", doc.Modules)
	}
	if doc.Version != schemaVersion {
		t.Fatalf("expected version %q, got %q", schemaVersion, doc.Version)
	}
}

func TestLoadCorruptCacheIsEmpty(t *testing.T) {
	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, DirName, FileName), "{not json")

	doc := Load(root)
	if len(doc.Modules) != 0 {
		t.Fatalf("expected empty modules for corrupt cache, got %#v", doc.Modules)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	root := t.TempDir()
	doc := Document{
		Modules: map[string]model.CacheRecord{
			"src/main.rs": {Hash: "abc123", Refs: []string{"a", "b"}},
		},
	}
	if err := Save(root, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Load(root)
	record, ok := loaded.Modules["src/main.rs"]
	if !ok {
		t.Fatalf("expected src/main.rs in loaded cache, got %#v", loaded.Modules)
	}
	if record.Hash != "abc123" || len(record.Refs) != 2 {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestDiffDetectsUnchangedAndChanged(t *testing.T) {
	root := t.TempDir()
	unchangedPath := filepath.Join(root, "src", "a.rs")
	changedPath := filepath.Join(root, "src", "b.rs")
	testutil.MustWriteFile(t, unchangedPath, "fn a() {}")
	testutil.MustWriteFile(t, changedPath, "fn b() {}")

	priorHash, err := HashFile(unchangedPath)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	prior := Document{Modules: map[string]model.CacheRecord{
		unchangedPath: {Hash: priorHash, Refs: []string{"a"}},
		changedPath:   {Hash: "stale-hash", Refs: []string{"b"}},
	}}

	plan, err := Diff([]string{unchangedPath, changedPath}, prior)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if _, ok := plan.Unchanged[unchangedPath]; !ok {
		t.Fatalf("expected %s to be unchanged", unchangedPath)
	}
	if len(plan.Changed) != 1 || plan.Changed[0] != changedPath {
		t.Fatalf("expected only %s changed, got %#v", changedPath, plan.Changed)
	}
}

func TestDiffDropsFilesNoLongerPresent(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "src", "a.rs")
	testutil.MustWriteFile(t, present, "fn a() {}")

	prior := Document{Modules: map[string]model.CacheRecord{
		filepath.Join(root, "src", "removed.rs"): {Hash: "irrelevant"},
	}}

	plan, err := Diff([]string{present}, prior)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(plan.Changed) != 1 {
		t.Fatalf("expected the present file to be reparsed, got %#v", plan.Changed)
	}
}

func TestHashFileIsDeterministic(t *testing.T) {
	path := testutil.WriteTempFile(t, "a.rs", "fn a() {}")
	first, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("expected stable hash, got %s then %s", first, second)
	}
}

func TestDiffConcurrentSafety(t *testing.T) {
	root := t.TempDir()
	var files []string
	for i := 0; i < 8; i++ {
		path := filepath.Join(root, "src", "f"+string(rune('a'+i))+".rs")
		testutil.MustWriteFile(t, path, "fn f() {}")
		files = append(files, path)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Diff(files, empty()); err != nil {
				t.Errorf("diff: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestBuildDocumentAssemblesRecords(t *testing.T) {
	hashes := map[string]string{"src/a.rs": "h1", "src/b.rs": "h2"}
	refs := map[string][]string{"src/a.rs": {"b"}}

	doc := BuildDocument(hashes, refs)
	if doc.Modules["src/a.rs"].Hash != "h1" || len(doc.Modules["src/a.rs"].Refs) != 1 {
		t.Fatalf("unexpected record for a.rs: %#v", doc.Modules["src/a.rs"])
	}
	if doc.Modules["src/b.rs"].Hash != "h2" || doc.Modules["src/b.rs"].Refs != nil {
		t.Fatalf("unexpected record for b.rs: %#v", doc.Modules["src/b.rs"])
	}
}
