// Package cache implements the content-addressed incremental cache: it
// hashes each scanned file, compares against the prior run's cache.json,
// and reports which files changed so the extractor only reparses those.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ben-ranford/deadmod/internal/model"
	"github.com/ben-ranford/deadmod/internal/safeio"
)

const schemaVersion = "v1"

// FileName is the cache document's name under the workspace cache directory.
const FileName = "cache.json"

// DirName is the directory a cache document lives under, relative to the
// crate root.
const DirName = ".deadmod"

// Document is the on-disk cache.json shape.
type Document struct {
	Version string                       `json:"version"`
	Modules map[string]model.CacheRecord `json:"modules"`
}

func empty() Document {
	return Document{Version: schemaVersion, Modules: make(map[string]model.CacheRecord)}
}

// Load reads the cache document at root/.deadmod/cache.json. A missing or
// corrupt file yields an empty, usable document rather than an error: a
// stale or absent cache degrades to a full reparse, it never aborts the run.
func Load(root string) Document {
	path := filepath.Join(root, DirName, FileName)
	data, err := safeio.ReadFile(path)
	if err != nil {
		return empty()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return empty()
	}
	if doc.Modules == nil {
		doc.Modules = make(map[string]model.CacheRecord)
	}
	doc.Version = schemaVersion
	return doc
}

// Save persists doc atomically to root/.deadmod/cache.json.
func Save(root string, doc Document) error {
	doc.Version = schemaVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(root, DirName, FileName), data)
}

// HashFile returns the lowercase hex SHA-256 digest of path's contents.
func HashFile(path string) (string, error) {
	data, err := safeio.ReadFile(path)
	if err != nil {
		return "", err
	}
	return sha256Hex(data), nil
}

func sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// Plan describes, for one scan, which files are unchanged (and can reuse
// their cached references) versus which must be reparsed.
type Plan struct {
	Unchanged map[string]model.CacheRecord
	Changed   []string
	Hashes    map[string]string
}

// Diff compares the current file list's content hashes against prior,
// partitioning files into unchanged (cache hit) and changed (needs parse).
// A file present in prior but absent from files is simply dropped — it no
// longer exists and contributes nothing further.
func Diff(files []string, prior Document) (Plan, error) {
	plan := Plan{
		Unchanged: make(map[string]model.CacheRecord),
		Hashes:    make(map[string]string, len(files)),
	}
	for _, file := range files {
		digest, err := HashFile(file)
		if err != nil {
			return Plan{}, err
		}
		plan.Hashes[file] = digest
		if record, ok := prior.Modules[file]; ok && record.Hash == digest {
			plan.Unchanged[file] = record
			continue
		}
		plan.Changed = append(plan.Changed, file)
	}
	return plan, nil
}

// BuildDocument assembles the new cache document from this run's hashes and
// the per-file reference lists the extractor produced (both freshly parsed
// and carried over from the unchanged set).
func BuildDocument(hashes map[string]string, refs map[string][]string) Document {
	doc := empty()
	for file, hash := range hashes {
		doc.Modules[file] = model.CacheRecord{Hash: hash, Refs: refs[file]}
	}
	return doc
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if os.Rename(tmpPath, path) == nil {
		return nil
	}
	_ = os.Remove(tmpPath)
	return os.WriteFile(path, data, 0o600)
}
