// Copyright (c) 2026 Postify. All rights reserved.

package token

import (
	"strings"
	"time"

	"github.com/postify/identity/internal/platform/apperr"
)

// # Lifetimes

const (
	// AccessTokenTTL is the duration an access token remains valid.
	AccessTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenTTL is the duration a refresh token remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshThreshold is how close to expiry an access token must be before
	// [Service.ShouldRefresh] recommends a silent rotation.
	RefreshThreshold = 24 * time.Hour

	// TypeRefresh is the claim value distinguishing refresh tokens.
	TypeRefresh = "refresh"
)

// # Verification Result

// VerifyResult is the outcome of verifying a token.
//
// Exactly one of the following holds: Valid is true and Claims is set, or
// Valid is false and Err carries a stable code (MALFORMED_TOKEN,
// BAD_SIGNATURE, DECODE_ERROR, TOKEN_EXPIRED). Expired is set alongside Err
// for the expiry case so callers can attempt a silent refresh.
type VerifyResult struct {
	Valid   bool
	Expired bool
	Claims  *Claims
	Err     *apperr.AppError
}

// # Service

// Service is the legacy compact-token engine.
//
// It is pure and stateless: issuance and verification depend only on the
// secret, the signer, and the clock. One instance is shared freely across
// goroutines.
type Service struct {
	secret string
	signer Signer
	now    func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithSigner replaces the default [LegacySigner].
func WithSigner(signer Signer) Option {
	return func(service *Service) { service.signer = signer }
}

// WithClock replaces the wall clock. Tests use this to mint tokens at
// arbitrary points in time.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs the legacy token engine.
func NewService(secret string, options ...Option) *Service {
	service := &Service{
		secret: secret,
		signer: LegacySigner{},
		now:    time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// nowMillis returns the engine clock as Unix milliseconds.
func (service *Service) nowMillis() int64 {
	return service.now().UnixMilli()
}

// # Issuance

/*
IssueAccessToken mints a signed access token for the given identity snapshot.

The engine stamps iat = now and exp = now + [AccessTokenTTL], both in Unix
milliseconds.

Returns:
  - string: Compact "header.payload.signature" token
  - error: Encoding failures only
*/
func (service *Service) IssueAccessToken(claims AccessClaims) (string, error) {
	issuedAt := service.nowMillis()
	return service.seal(Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + AccessTokenTTL.Milliseconds(),
	})
}

/*
IssueRefreshToken mints a long-lived refresh token for the given user.

Refresh tokens carry only {userId, type: "refresh", exp}; they embed no
identity snapshot because the snapshot is re-read at refresh time.
*/
func (service *Service) IssueRefreshToken(userID string) (string, error) {
	return service.seal(Claims{
		UserID:    userID,
		Type:      TypeRefresh,
		ExpiresAt: service.nowMillis() + RefreshTokenTTL.Milliseconds(),
	})
}

// seal encodes, signs, and concatenates the three token segments.
func (service *Service) seal(claims Claims) (string, error) {
	headerEncoded, err := Encode(defaultHeader)
	if err != nil {
		return "", err
	}

	payloadEncoded, err := Encode(claims)
	if err != nil {
		return "", err
	}

	signature := service.signer.Sign(headerEncoded, payloadEncoded, service.secret)
	return headerEncoded + "." + payloadEncoded + "." + signature, nil
}

// # Verification

/*
Verify checks a token's structure, signature, and expiry, in that order.

Flow:
 1. Split into exactly three non-empty segments, else MALFORMED_TOKEN.
 2. Recompute the signature over the untouched segments, else BAD_SIGNATURE.
 3. Decode the payload, else DECODE_ERROR.
 4. Check exp against the engine clock, else TOKEN_EXPIRED (Expired flag set).

The signature is checked before the payload is ever decoded, so a tampered
token is rejected without parsing attacker-controlled JSON.
*/
func (service *Service) Verify(tokenString string) VerifyResult {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return VerifyResult{Err: apperr.MalformedToken()}
	}

	expectedSignature := service.signer.Sign(parts[0], parts[1], service.secret)
	if parts[2] != expectedSignature {
		return VerifyResult{Err: apperr.BadSignature()}
	}

	var claims Claims
	if err := Decode(parts[1], &claims); err != nil {
		return VerifyResult{Err: apperr.As(err)}
	}

	if claims.ExpiresAt != 0 && claims.ExpiresAt < service.nowMillis() {
		return VerifyResult{Expired: true, Err: apperr.TokenExpired()}
	}

	return VerifyResult{Valid: true, Claims: &claims}
}

/*
DecodeUnverified decodes a token payload WITHOUT checking the signature or
expiry.

For inspection only (claims display, refresh-window math) — never for trust
decisions. Returns nil on any structural or decoding failure.
*/
func (service *Service) DecodeUnverified(tokenString string) *Claims {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil
	}

	var claims Claims
	if err := Decode(parts[1], &claims); err != nil {
		return nil
	}
	return &claims
}

/*
ShouldRefresh reports whether the token is close enough to expiry to warrant a
silent rotation: true iff 0 < exp - now < [RefreshThreshold].

An already-expired token returns false — expiry is the caller's recovery path
(refresh token), not the opportunistic one.
*/
func (service *Service) ShouldRefresh(tokenString string) bool {
	claims := service.DecodeUnverified(tokenString)
	if claims == nil || claims.ExpiresAt == 0 {
		return false
	}

	untilExpiry := claims.ExpiresAt - service.nowMillis()
	return untilExpiry < RefreshThreshold.Milliseconds() && untilExpiry > 0
}

/*
Refresh exchanges a valid refresh token for a fresh access token.

Fails with INVALID_REFRESH_TOKEN if the refresh token does not verify or does
not carry type "refresh". The new access token embeds the caller-supplied
identity snapshot (the directory's current view of the user, so role changes
propagate on rotation).
*/
func (service *Service) Refresh(refreshToken string, claims AccessClaims) (string, error) {
	result := service.Verify(refreshToken)
	if !result.Valid {
		return "", apperr.InvalidRefreshToken("Invalid refresh token")
	}

	if result.Claims.Type != TypeRefresh {
		return "", apperr.InvalidRefreshToken("Invalid token type")
	}

	return service.IssueAccessToken(claims)
}
