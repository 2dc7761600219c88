// Package storage persists ledger collections in a key-value store.
//
// Every backend stores opaque byte values under a small set of string keys.
// A missing key is reported with ok == false, never as an error.
package storage

import (
	"context"
	"errors"
	"os"
	"sync"
)

// KV is the key-value store the ledger persists into
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FileKV stores each key in its own file through Storage
type FileKV struct {
	store *Storage
}

// NewFileKV wraps a Storage as a KV
func NewFileKV(store *Storage) *FileKV {
	return &FileKV{store: store}
}

// Storage returns the underlying file storage
func (f *FileKV) Storage() *Storage {
	return f.store
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := f.store.ReadFile(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	return f.store.WriteFile(key, value)
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	return f.store.Remove(key)
}

// MemoryKV keeps values in memory; used for ephemeral sessions and tests
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
