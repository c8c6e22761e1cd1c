// Copyright (c) 2026 Postify. All rights reserved.

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// keyPattern restricts keys to filesystem-safe names. All Postify store keys
// ("postify_users", ...) satisfy it.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// File is a durable [Store] keeping one JSON document per key as a file in a
// single directory.
//
// # Durability
//
// Writes go through a temp file followed by an atomic rename, so a crash
// mid-write leaves either the old value or the new value, never a torn one.
//
// # Concurrency
//
// A process-wide mutex serializes writers. Multiple processes sharing one
// directory are NOT coordinated — local mode is a single-process design.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates (if needed) the backing directory and returns the store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: failed to create directory %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// path maps a logical key to its backing file.
func (store *File) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("kvstore: invalid key %q", key)
	}
	return filepath.Join(store.dir, key+".json"), nil
}

// Get implements [Store].
func (store *File) Get(_ context.Context, key string) ([]byte, error) {
	filePath, err := store.path(key)
	if err != nil {
		return nil, err
	}

	value, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvstore: read %q: %w", key, err)
	}
	return value, nil
}

// Set implements [Store].
func (store *File) Set(_ context.Context, key string, value []byte) error {
	filePath, err := store.path(key)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	// Write-then-rename keeps the visible file intact until the new value is
	// fully on disk.
	tempFile, err := os.CreateTemp(store.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kvstore: temp file for %q: %w", key, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(value); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("kvstore: write %q: %w", key, err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("kvstore: close %q: %w", key, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("kvstore: commit %q: %w", key, err)
	}

	return nil
}

// Delete implements [Store].
func (store *File) Delete(_ context.Context, key string) error {
	filePath, err := store.path(key)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}
