package rust

import "strings"

// usePathEntry is one flattened leaf of a `use` clause: a single concrete
// path with the local name it binds (possibly renamed, possibly a glob).
type usePathEntry struct {
	Path     string
	Symbol   string
	Local    string
	Wildcard bool
}

// parseUseClause flattens the argument of a `use` declaration — the part
// between "use" and the trailing ";" — into one entry per leaf path. Nested
// brace groups (`use a::{b, c::{d, e}}`) are expanded recursively; a glob
// import (`use a::*`) becomes one Wildcard entry whose Path is the
// containing path.
func parseUseClause(clause string) []usePathEntry {
	parts := splitTopLevel(clause, ',')
	entries := make([]usePathEntry, 0, len(parts))
	for _, part := range parts {
		expandUsePart(strings.TrimSpace(part), "", &entries)
	}
	return entries
}

func expandUsePart(part string, prefix string, out *[]usePathEntry) {
	part = strings.TrimSpace(part)
	if part == "" {
		return
	}
	part = strings.TrimPrefix(part, "pub ")

	if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(part, "{"), "}"))
		for _, segment := range splitTopLevel(inner, ',') {
			expandUsePart(segment, prefix, out)
		}
		return
	}

	if idx := strings.Index(part, "::{"); idx >= 0 && strings.HasSuffix(part, "}") {
		base := strings.TrimSpace(part[:idx])
		inner := strings.TrimSpace(part[idx+3 : len(part)-1])
		nextPrefix := joinPath(prefix, base)
		for _, segment := range splitTopLevel(inner, ',') {
			expandUsePart(segment, nextPrefix, out)
		}
		return
	}

	local := ""
	if idx := strings.LastIndex(part, " as "); idx > 0 {
		local = strings.TrimSpace(part[idx+4:])
		part = strings.TrimSpace(part[:idx])
	}

	wildcard := part == "*" || strings.HasSuffix(part, "::*")
	if wildcard {
		if part == "*" {
			part = strings.TrimSpace(prefix)
			prefix = ""
		} else {
			part = strings.TrimSpace(strings.TrimSuffix(part, "::*"))
		}
	}
	fullPath := joinPath(prefix, part)
	symbol := lastPathSegment(fullPath)
	if strings.EqualFold(symbol, "self") {
		symbol = lastPathSegment(prefix)
	}
	if wildcard {
		symbol = "*"
	}
	if strings.EqualFold(local, "self") {
		local = lastPathSegment(prefix)
	}
	*out = append(*out, usePathEntry{
		Path:     fullPath,
		Symbol:   symbol,
		Local:    local,
		Wildcard: wildcard,
	})
}

func joinPath(prefix, value string) string {
	prefix = strings.TrimSpace(prefix)
	value = strings.TrimSpace(value)
	switch {
	case prefix == "":
		return strings.TrimPrefix(value, "::")
	case value == "":
		return strings.TrimPrefix(prefix, "::")
	default:
		return strings.TrimPrefix(prefix+"::"+value, "::")
	}
}

func splitTopLevel(value string, sep rune) []string {
	parts := make([]string, 0)
	depth := 0
	start := 0
	for i, r := range value {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(value[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(value[start:]))
	return parts
}

func lastPathSegment(path string) string {
	path = strings.TrimSpace(strings.TrimPrefix(path, "::"))
	if path == "" {
		return ""
	}
	parts := strings.Split(path, "::")
	return strings.TrimSpace(parts[len(parts)-1])
}

// leadingSegment reports the first `::`-separated segment of path, used to
// classify `crate`/`super`/`self` relative use-paths.
func leadingSegment(path string) string {
	path = strings.TrimPrefix(path, "::")
	if idx := strings.Index(path, "::"); idx >= 0 {
		return path[:idx]
	}
	return path
}
