package layers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/tidwall/btree"

	"github.com/hexbound/contentfs"
)

// syntheticIndex marks directory entries inferred from file paths rather
// than recorded in the archive. It is never dereferenced because directory
// reads are rejected before the archive is opened.
const syntheticIndex = -1

type zipEntry struct {
	index int
	isDir bool
	size  int64
}

// Zip serves the contents of a zip archive held fully in memory. The entry
// index and directory map are built once at construction; every read opens
// a fresh reader over the retained buffer, so concurrent reads from
// multiple goroutines are safe.
type Zip struct {
	buf []byte

	// entries maps every canonical path inside the archive (root prefix
	// stripped) to its record, including synthesized ancestor directories.
	entries map[string]zipEntry

	// dirs maps each canonical directory path (root "" included) to the
	// ordered, de-duplicated names of its immediate children.
	dirs map[string]*btree.Set[string]
}

// NewZip indexes a fully-buffered zip archive. If every entry shares a
// common first path segment (an archive made by zipping one wrapper
// folder), that segment is stripped from all canonical paths. Ancestor
// directories implied by file paths are synthesized even when the archive
// carries no record for them.
func NewZip(buf []byte) (*Zip, error) {
	archive, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("contentfs: parse zip archive: %w", err)
	}

	names := make([]string, len(archive.File))
	for i, file := range archive.File {
		names[i] = file.Name
	}
	prefix := rootPrefix(names)

	z := &Zip{
		buf:     buf,
		entries: make(map[string]zipEntry, len(archive.File)),
		dirs:    make(map[string]*btree.Set[string]),
	}

	for i, file := range archive.File {
		norm := contentfs.Normalize(strings.TrimPrefix(file.Name, prefix))
		if norm == "" {
			// The stripped wrapper folder or an explicit root record.
			continue
		}

		z.entries[norm] = zipEntry{
			index: i,
			isDir: strings.HasSuffix(file.Name, "/"),
			size:  int64(file.UncompressedSize64),
		}

		// Register the entry and every ancestor in its parent's child
		// set, so nested structure survives archives without explicit
		// directory records.
		for sub := norm; sub != ""; {
			parent, child := splitLast(sub)
			set, ok := z.dirs[parent]
			if !ok {
				set = &btree.Set[string]{}
				z.dirs[parent] = set
			}
			set.Insert(child)
			sub = parent
		}
	}

	// Directories implied by the map but absent from the archive become
	// zero-length synthetic entries, so Stat and Exists behave uniformly.
	for dir := range z.dirs {
		if dir == "" {
			continue
		}
		if _, ok := z.entries[dir]; !ok {
			z.entries[dir] = zipEntry{index: syntheticIndex, isDir: true}
		}
	}

	return z, nil
}

// rootPrefix returns the wrapper segment shared by every entry name,
// including the trailing slash, or "" when there is none. The first
// segment of the first name is the only candidate; a single entry outside
// it disables stripping entirely.
func rootPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}

	pos := strings.IndexByte(names[0], '/')
	if pos < 0 {
		return ""
	}

	candidate := names[0][:pos+1]
	for _, name := range names {
		if !strings.HasPrefix(name, candidate) {
			return ""
		}
	}

	return candidate
}

// splitLast splits a canonical path into its parent directory and final
// segment. Paths without a slash belong to the root.
func splitLast(path string) (parent, name string) {
	if pos := strings.LastIndexByte(path, '/'); pos >= 0 {
		return path[:pos], path[pos+1:]
	}

	return "", path
}

// open builds a fresh reader over the retained buffer. Zip readers are not
// safely re-entrant across reads, so each operation gets its own. The
// deflate decompressor comes from klauspost/compress.
func (z *Zip) open(path string) (*zip.Reader, error) {
	archive, err := zip.NewReader(bytes.NewReader(z.buf), int64(len(z.buf)))
	if err != nil {
		return nil, contentfs.WrapIO(err, path)
	}

	archive.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	return archive, nil
}

// ReadDir returns the directory map's child set, re-joined onto the parent
// path. Child names iterate in btree order, so listings are deterministic.
func (z *Zip) ReadDir(ctx context.Context, path string) ([]string, error) {
	norm := contentfs.Normalize(path)

	set, ok := z.dirs[norm]
	if !ok {
		return nil, contentfs.ErrNotExist
	}

	children := make([]string, 0, set.Len())
	set.Scan(func(name string) bool {
		children = append(children, contentfs.Join(norm, name))
		return true
	})

	return children, nil
}

// ReadFile decompresses a single entry fully into memory.
func (z *Zip) ReadFile(ctx context.Context, path string) ([]byte, error) {
	norm := contentfs.Normalize(path)

	entry, ok := z.entries[norm]
	if !ok || entry.isDir {
		return nil, contentfs.ErrNotExist
	}

	archive, err := z.open(norm)
	if err != nil {
		return nil, err
	}

	file, err := archive.File[entry.index].Open()
	if err != nil {
		return nil, contentfs.WrapIO(err, norm)
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, contentfs.WrapIO(err, norm)
	}

	return buf, nil
}

// Stat answers from the entry index alone; the archive is not reopened.
func (z *Zip) Stat(ctx context.Context, path string) (contentfs.FileMetadata, error) {
	norm := contentfs.Normalize(path)

	entry, ok := z.entries[norm]
	if !ok {
		return contentfs.FileMetadata{}, contentfs.ErrNotExist
	}

	return contentfs.FileMetadata{
		Size:  entry.size,
		IsDir: entry.isDir,
	}, nil
}

// Exists reports whether the canonical path has an entry, synthesized
// directories included.
func (z *Zip) Exists(ctx context.Context, path string) bool {
	_, ok := z.entries[contentfs.Normalize(path)]
	return ok
}

var _ contentfs.FileSystem = (*Zip)(nil)
