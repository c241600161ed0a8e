// Package layers provides the physical content stores behind the contentfs
// contract — loose directories, zip archives and the always-empty stub —
// plus the overlay that combines an ordered stack of them into one tree.
package layers

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hexbound/contentfs"
)

// Disk serves a subtree of the real filesystem rooted at a base directory.
type Disk struct {
	base string
}

// NewDisk creates a disk-backed store rooted at the given directory.
func NewDisk(base string) *Disk {
	return &Disk{base: filepath.Clean(base)}
}

// resolve normalizes the request path and maps it onto the real filesystem.
// Callers only ever see the canonical form, never the real path.
func (d *Disk) resolve(path string) (string, string) {
	norm := contentfs.Normalize(path)
	return norm, filepath.Join(d.base, filepath.FromSlash(norm))
}

// ReadDir lists real directory entries, re-joined onto the canonical
// request path.
func (d *Disk) ReadDir(ctx context.Context, path string) ([]string, error) {
	norm, real := d.resolve(path)

	entries, err := os.ReadDir(real)
	if err != nil {
		return nil, mapOSError(err, norm)
	}

	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, contentfs.Join(norm, entry.Name()))
	}

	return children, nil
}

// ReadFile reads the real file fully into memory.
func (d *Disk) ReadFile(ctx context.Context, path string) ([]byte, error) {
	norm, real := d.resolve(path)

	buf, err := os.ReadFile(real)
	if err != nil {
		return nil, mapOSError(err, norm)
	}

	return buf, nil
}

// Stat delegates to the OS without reading file contents.
func (d *Disk) Stat(ctx context.Context, path string) (contentfs.FileMetadata, error) {
	norm, real := d.resolve(path)

	info, err := os.Stat(real)
	if err != nil {
		return contentfs.FileMetadata{}, mapOSError(err, norm)
	}

	return contentfs.FileMetadata{
		Size:  info.Size(),
		IsDir: info.IsDir(),
	}, nil
}

// Exists reports whether the path resolves to a real file or directory.
func (d *Disk) Exists(ctx context.Context, path string) bool {
	_, real := d.resolve(path)

	_, err := os.Stat(real)
	return err == nil
}

// mapOSError translates OS lookup failures into the contract's error kinds.
// Anything that is not a plain missing path stays visible as a wrapped I/O
// error.
func mapOSError(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return contentfs.ErrNotExist
	}

	return contentfs.WrapIO(err, path)
}

var _ contentfs.FileSystem = (*Disk)(nil)
