package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tidwall/btree"
)

// Memory is an in-memory store backed by an ordered B-tree, so Keys comes
// out sorted without an extra pass.
type Memory struct {
	mu   sync.RWMutex
	keys *btree.Map[string, any]
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		keys: btree.NewMap[string, any](0), // degree 0 = auto-optimize
	}
}

// FromJSON builds a memory store from a JSON object by flattening nested
// objects into segmented keys: {"sdl":{"width":800}} becomes
// Key{"sdl","width"} -> 800. Arrays and scalars are stored as leaves.
func FromJSON(data []byte) (*Memory, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("kv: parse json document: %w", err)
	}

	m := NewMemory()
	flatten(m.keys, nil, root)

	return m, nil
}

func flatten(into *btree.Map[string, any], prefix Key, node map[string]any) {
	for name, value := range node {
		key := append(append(Key{}, prefix...), name)
		if child, ok := value.(map[string]any); ok {
			flatten(into, key, child)
			continue
		}
		into.Set(key.String(), value)
	}
}

func (m *Memory) Get(ctx context.Context, key Key) (any, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.keys.Get(key.String())
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key Key, value any) error {
	if err := key.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys.Set(key.String(), value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys.Delete(key.String())
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys = btree.NewMap[string, any](0)
	return nil
}

func (m *Memory) Keys(ctx context.Context) ([]Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]Key, 0, m.keys.Len())
	m.keys.Scan(func(encoded string, _ any) bool {
		keys = append(keys, ParseKey(encoded))
		return true
	})

	return keys, nil
}

var _ Store = (*Memory)(nil)
