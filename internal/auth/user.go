// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"time"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/pkg/slug"
)

// # Entities

// Profile is the mutable, user-editable part of an account.
//
// The JSON shape mirrors the user_metadata object persisted by the browser
// build, so a directory exported from the browser loads unchanged.
type Profile struct {
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio,omitempty"`
	Website   string `json:"website,omitempty"`
	Location  string `json:"location,omitempty"`
}

// User is a directory record.
//
// PasswordDigest is serialized under the legacy "password" key for storage
// parity; [User.Sanitized] strips it before the record ever reaches a client.
type User struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	PasswordDigest string       `json:"password,omitempty"`
	Role           sec.UserRole `json:"role"`
	Profile        Profile      `json:"user_metadata"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Sanitized returns a copy of the user with the password digest removed.
// Every user value that crosses the API boundary goes through this.
func (user User) Sanitized() User {
	user.PasswordDigest = ""
	return user
}

// DefaultAvatarURL derives the deterministic avatar for a username.
func DefaultAvatarURL(username string) string {
	return constants.DefaultAvatarBase + slug.Make(username)
}

// # Session

// Session is the unit of authenticated state.
//
// ExpiresAt duplicates the access token's exp claim (Unix milliseconds) so
// restore-time checks never need to decode the token.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
	ExpiresAt    int64  `json:"expires_at"`
}
