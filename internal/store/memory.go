package store

import (
	"context"
	"sync"
)

// Memory keeps session blobs in a map. Nothing survives the process.
//
// Thread-safety: all methods are safe for concurrent use.
type Memory struct {
	persistence
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{entries: make(map[string][]byte)}
	m.persistence = persistence{blobs: m}
	return m
}

// Get returns the payload stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Put stores payload under key.
func (m *Memory) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]byte, len(payload))
	copy(data, payload)
	m.entries[key] = data
	return nil
}

// Delete removes every blob.
func (m *Memory) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
