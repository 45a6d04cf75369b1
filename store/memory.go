package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rmalhotra/zarrcore/zarrerr"
)

// MemStore is an in-memory Store, useful for tests and short-lived
// programs: a single mutex guarding a plain map of byte-slice objects
// keyed by string.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, key string, byteRange *ByteRange) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, nil
	}

	if byteRange == nil {
		out := make([]byte, len(obj))
		copy(out, obj)
		return out, nil
	}

	start, end := byteRange.Resolve(int64(len(obj)))
	out := make([]byte, end-start)
	copy(out, obj[start:end])
	return out, nil
}

// Set implements Store.
func (m *MemStore) Set(_ context.Context, key string, value []byte, byteRange *ByteRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if byteRange == nil || byteRange.Start == nil {
		obj := make([]byte, len(value))
		copy(obj, value)
		m.objects[key] = obj
		return nil
	}

	obj, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("store: positional write to %q: %w: object does not exist", key, zarrerr.Argument)
	}

	start := *byteRange.Start
	if start < 0 {
		start += int64(len(obj))
	}
	if start < 0 || start+int64(len(value)) > int64(len(obj)) {
		return fmt.Errorf("store: positional write to %q: %w: range out of bounds", key, zarrerr.Argument)
	}
	copy(obj[start:start+int64(len(value))], value)
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Exists implements Store.
func (m *MemStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Keys returns a sorted snapshot of every key currently stored. It exists
// for tests that assert on garbage collection and fill-value elision and
// has no analogue in the Store interface itself.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
