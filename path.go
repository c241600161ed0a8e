package contentfs

import "strings"

// Normalize converts arbitrary slash-separated input into canonical form:
// forward slashes only, no leading or trailing slash, "." segments dropped,
// ".." resolved against the preceding segment. Popping at the root is a
// no-op, so no input can escape above it. The root directory is always the
// empty string, never "/".
func Normalize(path string) string {
	parts := make([]string, 0, strings.Count(path, "/")+1)

	for _, part := range strings.Split(path, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, "/")
}

// Join combines a canonical parent path with a child name, keeping the
// root-as-empty-string convention intact:
//
//	Join("", "foo/bar") -> "foo/bar"
//	Join("dir", "file") -> "dir/file"
//
// Both inputs are assumed already canonical; callers normalize first.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}

	return parent + "/" + child
}
