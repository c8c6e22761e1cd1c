// Copyright (c) 2026 Postify. All rights reserved.

/*
Package kvstore provides the durable local key-value store backing Postify's
local mode.

It is the Go rendition of the browser's localStorage: a small set of logical
string keys, each holding one JSON document, surviving process restarts.

Core Responsibilities:

  - Durability: Values written survive restarts ([File]).
  - Simplicity: Get/Set/Delete, nothing else — validation belongs to callers.
  - Absence semantics: A missing key is [ErrNotFound], never an empty value.

Corruption policy is deliberately left to callers: the auth layer treats an
unparsable value as absence (logged, never thrown), per the session lifecycle
contract.
*/
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested key has no stored value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the minimal key-value contract shared by all backends.
type Store interface {

	// Get returns the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
