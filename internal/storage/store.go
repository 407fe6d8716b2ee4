// Package storage is the key-value collaborator that session state is
// persisted through. Values are anything encoding/json can round-trip.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidKey is returned for keys a backend cannot store.
var ErrInvalidKey = errors.New("invalid storage key")

// Store loads, saves and clears JSON values by key.
//
// Load decodes the stored value into dst and reports whether one was found.
// A missing key is not an error.
type Store interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
	Clear(ctx context.Context, key string) error
}

// Cleaner is implemented by stores that can drop stale entries.
type Cleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}

// KeyPrefix scopes every key the app writes.
const KeyPrefix = "wordex-musikkryss:"

type namespaced struct {
	prefix string
	inner  Store
}

// Namespace returns a Store that prefixes every key with prefix.
func Namespace(s Store, prefix string) Store {
	return namespaced{prefix: prefix, inner: s}
}

func (n namespaced) Load(ctx context.Context, key string, dst any) (bool, error) {
	return n.inner.Load(ctx, n.prefix+key, dst)
}

func (n namespaced) Save(ctx context.Context, key string, value any) error {
	return n.inner.Save(ctx, n.prefix+key, value)
}

func (n namespaced) Clear(ctx context.Context, key string) error {
	return n.inner.Clear(ctx, n.prefix+key)
}

// MemoryStore keeps encoded values in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
