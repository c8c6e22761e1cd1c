// Copyright (c) 2026 Postify. All rights reserved.

// Package uuid generates unique identifiers for entities and requests.
package uuid

import "github.com/google/uuid"

// New returns a new UUID v7 string. Version 7 identifiers are time-ordered,
// which keeps index pages warm and makes IDs sortable by creation time.
// Falls back to v4 in the unlikely event the monotonic source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether the given string parses as any RFC 4122 UUID.
func Valid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
