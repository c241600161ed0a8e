// Package kv holds the typed key-value stores the game reads its
// configuration from and persists its flags into. It is a separate
// persistence mechanism, deliberately not part of the content filesystem.
package kv

import (
	"context"
	"errors"
	"strings"
)

// Standard errors returned by Store implementations.
var (
	// ErrInvalidKey is returned for empty keys or segments containing
	// the separator.
	ErrInvalidKey = errors.New("kv: invalid key")

	// ErrReadOnly is returned by mutating operations on a read-only view.
	ErrReadOnly = errors.New("kv: read-only store")
)

// keySeparator joins key segments into their stored form.
const keySeparator = "."

// Key addresses a value by an ordered list of segments, e.g.
// Key{"sdl", "width"}.
type Key []string

// String returns the encoded form used as the storage key.
func (k Key) String() string {
	return strings.Join(k, keySeparator)
}

// Validate rejects empty keys and segments that would collide with the
// encoded separator.
func (k Key) Validate() error {
	if len(k) == 0 {
		return ErrInvalidKey
	}
	for _, segment := range k {
		if segment == "" || strings.Contains(segment, keySeparator) {
			return ErrInvalidKey
		}
	}

	return nil
}

// ParseKey splits an encoded key back into its segments.
func ParseKey(encoded string) Key {
	return Key(strings.Split(encoded, keySeparator))
}

// Store is a flat typed key-value store. Values are the shapes produced by
// encoding/json: bool, float64, string, []any, map[string]any and nil.
type Store interface {
	// Get returns the value for a key, with ok reporting whether the key
	// was present at all.
	Get(ctx context.Context, key Key) (value any, ok bool, err error)

	// Set stores a value under a key, replacing any previous value.
	Set(ctx context.Context, key Key, value any) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Keys returns all stored keys in sorted encoded order.
	Keys(ctx context.Context) ([]Key, error)
}

// GetString fetches a key and asserts it holds a non-empty string.
func GetString(ctx context.Context, store Store, key Key) (string, bool, error) {
	value, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	text, isString := value.(string)
	if !isString || text == "" {
		return "", false, nil
	}

	return text, true, nil
}
