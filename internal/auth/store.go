// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"

	"github.com/postify/identity/internal/token"
)

// # Storage Contracts

// UserDirectory is the persistence contract for account records.
//
// Two implementations exist: [KVUserDirectory] over the durable local store
// (local mode) and [PostgresUserDirectory] (remote mode). The service layer
// never knows which one it holds.
type UserDirectory interface {

	// List returns every account, oldest first.
	List(ctx context.Context) ([]User, error)

	// FindByID returns the account with the given ID, or (nil, nil) if absent.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email, or (nil, nil) if absent.
	// Matching is exact (case-sensitive), for parity with the browser directory.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given handle, or (nil, nil) if absent.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create appends a new account record.
	Create(ctx context.Context, user User) error

	// Update replaces the stored record with the same ID.
	Update(ctx context.Context, user User) error

	// Delete removes the account with the given ID. Absent IDs are not an error.
	Delete(ctx context.Context, id string) error
}

// SessionStore is the persistence contract for the single current session and
// its companion refresh token.
//
// # Corruption Policy
//
// Load returns (nil, nil) for both absence and unparsable stored state; a
// corrupt session must surface as "signed out", never as an error.
type SessionStore interface {

	// Load returns the stored session, or (nil, nil) if absent or corrupt.
	Load(ctx context.Context) (*Session, error)

	// Save persists the session. A nil session removes any stored one.
	Save(ctx context.Context, session *Session) error

	// LoadRefreshToken returns the stored refresh token, or "" if absent.
	LoadRefreshToken(ctx context.Context) (string, error)

	// SaveRefreshToken persists the refresh token. An empty value removes it.
	SaveRefreshToken(ctx context.Context, refreshToken string) error
}

// TokenEngine is the token issuance/verification contract.
//
// Satisfied by both [token.Service] (legacy compact engine) and
// [token.JWTEngine] (HMAC-SHA256); the session lifecycle is identical under
// either.
type TokenEngine interface {
	IssueAccessToken(claims token.AccessClaims) (string, error)
	IssueRefreshToken(userID string) (string, error)
	Verify(tokenString string) token.VerifyResult
	DecodeUnverified(tokenString string) *token.Claims
	ShouldRefresh(tokenString string) bool
	Refresh(refreshToken string, claims token.AccessClaims) (string, error)
}

// PostCounter reports content totals for the dashboard. The content service
// satisfies this; local mode without a content layer may pass nil.
type PostCounter interface {
	CountPosts(ctx context.Context) (int64, error)
}
