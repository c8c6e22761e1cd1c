// Copyright (c) 2026 Postify. All rights reserved.

package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process [Store] used by tests and ephemeral tooling.
//
// Safe for concurrent use. Values are copied on the way in and out so callers
// can never alias the internal map.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get implements [Store].
func (store *Memory) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, found := store.values[key]
	if !found {
		return nil, ErrNotFound
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

// Set implements [Store].
func (store *Memory) Set(_ context.Context, key string, value []byte) error {
	copied := make([]byte, len(value))
	copy(copied, value)

	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = copied
	return nil
}

// Delete implements [Store].
func (store *Memory) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.values, key)
	return nil
}
