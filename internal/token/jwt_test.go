// Copyright (c) 2026 Postify. All rights reserved.

package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/token"
)

const testIssuer = "postify-identity-test"

/*
TestJWTEngine_RoundTrip ensures the HMAC engine issues verifiable HS256
tokens whose normalized claims match the legacy engine's shape, with
timestamps converted to milliseconds.
*/
func TestJWTEngine_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, _ := frozenClock(issuedAt)
	engine := token.NewJWTEngine(testSecret, testIssuer, token.WithJWTClock(now))

	tokenString, err := engine.IssueAccessToken(token.AccessClaims{
		UserID: "user_42",
		Email:  "reader@example.com",
		Role:   "admin",
	})
	require.NoError(t, err)

	result := engine.Verify(tokenString)
	require.True(t, result.Valid)
	require.NotNil(t, result.Claims)

	assert.Equal(t, "user_42", result.Claims.UserID)
	assert.Equal(t, "reader@example.com", result.Claims.Email)
	assert.Equal(t, "admin", result.Claims.Role)
	assert.Equal(t, issuedAt.UnixMilli(), result.Claims.IssuedAt)
	assert.Equal(t, issuedAt.Add(token.AccessTokenTTL).UnixMilli(), result.Claims.ExpiresAt)
}

/*
TestJWTEngine_Expired moves the validation clock past the lifetime and
expects the same TOKEN_EXPIRED + Expired normalization the legacy engine
produces.
*/
func TestJWTEngine_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, setNow := frozenClock(issuedAt)
	engine := token.NewJWTEngine(testSecret, testIssuer, token.WithJWTClock(now))

	tokenString, err := engine.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	setNow(issuedAt.Add(token.AccessTokenTTL).Add(time.Minute))

	result := engine.Verify(tokenString)
	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperr.CodeTokenExpired, result.Err.Code)
}

/*
TestJWTEngine_BadSignature verifies a token minted under a different secret
normalizes to BAD_SIGNATURE.
*/
func TestJWTEngine_BadSignature(t *testing.T) {
	issuer := token.NewJWTEngine(testSecret, testIssuer)
	verifier := token.NewJWTEngine("another_secret_entirely", testIssuer)

	tokenString, err := issuer.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	result := verifier.Verify(tokenString)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperr.CodeBadSignature, result.Err.Code)
}

/*
TestJWTEngine_Malformed ensures unparsable input normalizes to
MALFORMED_TOKEN.
*/
func TestJWTEngine_Malformed(t *testing.T) {
	engine := token.NewJWTEngine(testSecret, testIssuer)

	for _, input := range []string{"", "abc", "a.b.c"} {
		result := engine.Verify(input)
		assert.False(t, result.Valid)
		require.NotNil(t, result.Err)
		assert.Equal(t, apperr.CodeMalformedToken, result.Err.Code)
	}
}

/*
TestJWTEngine_Refresh mirrors the legacy engine's refresh semantics: valid
refresh tokens exchange, access tokens presented as refresh tokens fail with
INVALID_REFRESH_TOKEN.
*/
func TestJWTEngine_Refresh(t *testing.T) {
	engine := token.NewJWTEngine(testSecret, testIssuer)

	refreshToken, err := engine.IssueRefreshToken("user_42")
	require.NoError(t, err)

	accessToken, err := engine.Refresh(refreshToken, token.AccessClaims{
		UserID: "user_42",
		Email:  "reader@example.com",
		Role:   "user",
	})
	require.NoError(t, err)
	assert.True(t, engine.Verify(accessToken).Valid)

	_, err = engine.Refresh(accessToken, token.AccessClaims{UserID: "user_42"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidRefreshToken))
}

/*
TestJWTEngine_ShouldRefresh exercises the rotation window against the HMAC
engine's second-granularity timestamps.
*/
func TestJWTEngine_ShouldRefresh(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, setNow := frozenClock(issuedAt)
	engine := token.NewJWTEngine(testSecret, testIssuer, token.WithJWTClock(now))

	tokenString, err := engine.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	assert.False(t, engine.ShouldRefresh(tokenString))

	setNow(issuedAt.Add(token.AccessTokenTTL).Add(-time.Hour))
	assert.True(t, engine.ShouldRefresh(tokenString))

	setNow(issuedAt.Add(token.AccessTokenTTL).Add(time.Hour))
	assert.False(t, engine.ShouldRefresh(tokenString))
}
