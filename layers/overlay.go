package layers

import (
	"context"

	"github.com/tidwall/btree"

	"github.com/hexbound/contentfs"
)

// Overlay answers every query by consulting an immutable stack of stores in
// fixed precedence order. File lookups are first-match-wins, so the topmost
// layer shadows lower ones entirely for a given path; directory listings
// are the union of every layer's children.
type Overlay struct {
	// stack holds the layers topmost-first.
	stack []contentfs.FileSystem
}

// NewOverlay combines an ordered list of layers into one tree. The caller
// supplies layers earliest-first; the stack is reversed at construction so
// the last layer given has the highest read precedence. The stack is
// immutable afterwards.
func NewOverlay(stack ...contentfs.FileSystem) *Overlay {
	reversed := make([]contentfs.FileSystem, len(stack))
	for i, layer := range stack {
		reversed[len(stack)-1-i] = layer
	}

	return &Overlay{stack: reversed}
}

// ReadDir merges the listings of every layer that has the path as a
// directory, de-duplicated and in sorted order. Only when no layer listed
// the path at all does the overlay report ErrNotExist.
func (o *Overlay) ReadDir(ctx context.Context, path string) ([]string, error) {
	norm := contentfs.Normalize(path)

	var merged btree.Set[string]
	found := false

	for _, layer := range o.stack {
		entries, err := layer.ReadDir(ctx, norm)
		if err != nil {
			continue
		}

		found = true
		for _, entry := range entries {
			merged.Insert(entry)
		}
	}

	if !found {
		return nil, contentfs.ErrNotExist
	}

	children := make([]string, 0, merged.Len())
	merged.Scan(func(entry string) bool {
		children = append(children, entry)
		return true
	})

	return children, nil
}

// ReadFile returns the topmost layer's file for the path; later layers are
// never consulted once one succeeds.
func (o *Overlay) ReadFile(ctx context.Context, path string) ([]byte, error) {
	norm := contentfs.Normalize(path)

	for _, layer := range o.stack {
		if buf, err := layer.ReadFile(ctx, norm); err == nil {
			return buf, nil
		}
	}

	return nil, contentfs.ErrNotExist
}

// Stat returns the topmost layer's metadata for the path.
func (o *Overlay) Stat(ctx context.Context, path string) (contentfs.FileMetadata, error) {
	norm := contentfs.Normalize(path)

	for _, layer := range o.stack {
		if meta, err := layer.Stat(ctx, norm); err == nil {
			return meta, nil
		}
	}

	return contentfs.FileMetadata{}, contentfs.ErrNotExist
}

// Exists reports true as soon as any layer has the path.
func (o *Overlay) Exists(ctx context.Context, path string) bool {
	norm := contentfs.Normalize(path)

	for _, layer := range o.stack {
		if layer.Exists(ctx, norm) {
			return true
		}
	}

	return false
}

var _ contentfs.FileSystem = (*Overlay)(nil)
