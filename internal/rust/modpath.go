package rust

import (
	"path"
	"strings"
)

// ChildModulePaths computes the candidate file paths a `mod name;`
// declaration inside declaringFile resolves to, following the Rust 2018+
// module-path convention: a "crate-root-like" file (main.rs, lib.rs, or a
// mod.rs) looks for children in its own directory; any other file looks for
// children in a same-named sibling directory.
func ChildModulePaths(declaringFile, name string) []string {
	declaringFile = path.Clean(filepath1ToSlash(declaringFile))
	dir := path.Dir(declaringFile)
	stem := strings.TrimSuffix(path.Base(declaringFile), ".rs")

	owningDir := dir
	if stem != "main" && stem != "lib" && stem != "mod" {
		owningDir = path.Join(dir, stem)
	}

	return []string{
		path.Join(owningDir, name+".rs"),
		path.Join(owningDir, name, "mod.rs"),
	}
}

// ModuleNameForFile reports the module name a discovered file contributes
// to the crate: main.rs/lib.rs map to the fixed names "main"/"lib" (so a
// src/bin/X/main.rs is also "main", where the root resolver names that
// binary root "X"), a mod.rs takes its parent directory's name, and any
// other file takes its own stem.
func ModuleNameForFile(file string) string {
	file = filepath1ToSlash(file)
	base := path.Base(file)
	stem := strings.TrimSuffix(base, ".rs")
	switch stem {
	case "main":
		return "main"
	case "lib":
		return "lib"
	case "mod":
		return path.Base(path.Dir(file))
	default:
		return stem
	}
}

func filepath1ToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
