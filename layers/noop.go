package layers

import (
	"context"

	"github.com/hexbound/contentfs"
)

// Noop is a store with no contents. It stands in where a FileSystem is
// required syntactically but never read; every lookup fails with
// ErrNotExist instead of panicking.
type Noop struct{}

// NewNoop creates the empty stub store.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) ReadDir(ctx context.Context, path string) ([]string, error) {
	return nil, contentfs.ErrNotExist
}

func (*Noop) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, contentfs.ErrNotExist
}

func (*Noop) Stat(ctx context.Context, path string) (contentfs.FileMetadata, error) {
	return contentfs.FileMetadata{}, contentfs.ErrNotExist
}

func (*Noop) Exists(ctx context.Context, path string) bool {
	return false
}

var _ contentfs.FileSystem = (*Noop)(nil)
