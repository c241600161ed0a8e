package kv

import "context"

// ReadOnly wraps any Store to reject mutation. The game's configuration is
// served through this view; only the flags store stays writable.
type ReadOnly struct {
	inner Store
}

// NewReadOnly creates a read-only view over an existing store.
func NewReadOnly(inner Store) *ReadOnly {
	return &ReadOnly{inner: inner}
}

func (r *ReadOnly) Get(ctx context.Context, key Key) (any, bool, error) {
	return r.inner.Get(ctx, key)
}

func (r *ReadOnly) Set(ctx context.Context, key Key, value any) error {
	return ErrReadOnly
}

func (r *ReadOnly) Delete(ctx context.Context, key Key) error {
	return ErrReadOnly
}

func (r *ReadOnly) Clear(ctx context.Context) error {
	return ErrReadOnly
}

func (r *ReadOnly) Keys(ctx context.Context) ([]Key, error) {
	return r.inner.Keys(ctx)
}

var _ Store = (*ReadOnly)(nil)
