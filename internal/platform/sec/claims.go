// Copyright (c) 2026 Postify. All rights reserved.

// Package sec provides security primitives for the identity engine: the role
// enum, password hashing strategies, and the legacy 32-bit rolling hash.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It acts
// as an Infrastructure service injected into the Application layer via small
// interfaces ([PasswordHasher], the auth engine's token seam).
package sec

// AuthClaims is the authenticated identity carried through request contexts.
//
// # Why a flat struct?
//
// Both token engines (the legacy compact token and the remote-mode HMAC JWT)
// normalize their payloads into this shape, so middleware and handlers never
// know which engine verified the request.
type AuthClaims struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}
