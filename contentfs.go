// Package contentfs assembles a single read-only tree of game content out of
// an ordered stack of physical sources (loose directories and zip archives).
// Consumers address the tree through canonical paths and never learn which
// source a file came from.
package contentfs

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// FileMetadata is an immutable snapshot of a single entry.
type FileMetadata struct {
	Size  int64
	IsDir bool
}

// FileSystem is the capability contract every content store satisfies.
// All paths are normalized by the implementation before lookup, so callers
// may pass arbitrary slash-separated input. Implementations never panic on
// malformed paths; all failure travels through the returned error.
type FileSystem interface {
	// ReadDir lists the immediate children of a directory as canonical
	// paths. Returns ErrNotExist if the path is not a directory in this
	// store.
	ReadDir(ctx context.Context, path string) ([]string, error)

	// ReadFile returns the full contents of a file. Directories and
	// missing paths yield ErrNotExist.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Stat returns size and kind without reading file contents.
	Stat(ctx context.Context, path string) (FileMetadata, error)

	// Exists reports whether the path exists in this store. It never
	// fails; lookup errors read as false.
	Exists(ctx context.Context, path string) bool
}

// ReadText reads a file through fsys and decodes it as UTF-8.
// Invalid encoding is reported as ErrRead. This is the only text-decoding
// policy in the contract; binary assets go through ReadFile untouched.
func ReadText(ctx context.Context, fsys FileSystem, path string) (string, error) {
	buf, err := fsys.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrRead, path)
	}

	return string(buf), nil
}
