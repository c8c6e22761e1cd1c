// Copyright (c) 2026 Postify. All rights reserved.

/*
Package token implements the compact-token engine that drives Postify sessions.

A token is an ASCII string of three dot-separated segments:

	{base64url(JSON header)}.{base64url(JSON payload)}.{signature}

The format is wire-compatible with the tokens minted by the browser build of
Postify: JSON serialized claims, unpadded base64url segments, and a keyed
signature over "header.payload". Two engines produce it:

  - [Service]: the legacy engine (rolling-hash signature, millisecond claims).
    Default in local mode for parity with recorded fixtures.
  - [JWTEngine]: a real HMAC-SHA256 JWT engine. Default in remote mode.

Both normalize verification results into the same [Claims] shape so the auth
layer never branches on which engine is active.
*/
package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/postify/identity/internal/platform/apperr"
)

// # Codec

// Encode serializes v as JSON and encodes it as unpadded base64url.
//
// The output is text-safe: no '+', '/', or '=' characters.
func Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", apperr.DecodeError(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode is the exact inverse of [Encode].
//
// It tolerates padded input (trailing '=' is stripped before decoding) so
// segments produced by padding-happy encoders still round-trip. Any failure —
// bad base64, bad JSON — is reported as a DECODE_ERROR, never as a panic or an
// unrelated runtime error.
func Decode(segment string, into any) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return apperr.DecodeError(err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return apperr.DecodeError(err)
	}
	return nil
}

// # Wire Structures

// Header is the first token segment.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// defaultHeader matches the browser build byte-for-byte, including the "HS256"
// label the legacy engine inherited despite not actually running HMAC-SHA256.
var defaultHeader = Header{Alg: "HS256", Typ: "JWT"}

// Claims is the second token segment.
//
// Timestamps are Unix milliseconds (JavaScript Date.now() parity), not the
// RFC 7519 seconds convention. Access tokens carry userId/email/role;
// refresh tokens carry userId/type/exp only.
type Claims struct {
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Type      string `json:"type,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// AccessClaims is the caller-supplied identity snapshot embedded in a new
// access token. The engine adds iat/exp itself.
type AccessClaims struct {
	UserID string
	Email  string
	Role   string
}
