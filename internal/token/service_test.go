// Copyright (c) 2026 Postify. All rights reserved.

package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/token"
)

const testSecret = "postify_jwt_secret_key_2024"

// frozenClock returns a clock fixed at the given time plus a setter to move it.
func frozenClock(start time.Time) (func() time.Time, func(time.Time)) {
	current := start
	return func() time.Time { return current }, func(t time.Time) { current = t }
}

/*
TestIssueAndVerify_RoundTrip ensures a freshly issued access token verifies
and carries the exact identity snapshot plus millisecond timestamps spanning
the access token lifetime.
*/
func TestIssueAndVerify_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, _ := frozenClock(issuedAt)
	service := token.NewService(testSecret, token.WithClock(now))

	tokenString, err := service.IssueAccessToken(token.AccessClaims{
		UserID: "user_42",
		Email:  "reader@example.com",
		Role:   "user",
	})
	require.NoError(t, err)
	require.Len(t, strings.Split(tokenString, "."), 3)

	result := service.Verify(tokenString)
	require.True(t, result.Valid)
	require.NotNil(t, result.Claims)

	assert.Equal(t, "user_42", result.Claims.UserID)
	assert.Equal(t, "reader@example.com", result.Claims.Email)
	assert.Equal(t, "user", result.Claims.Role)
	assert.Equal(t, issuedAt.UnixMilli(), result.Claims.IssuedAt)
	assert.Equal(t, issuedAt.UnixMilli()+token.AccessTokenTTL.Milliseconds(), result.Claims.ExpiresAt)
}

/*
TestVerify_Header checks the first segment decodes to the fixed legacy header.
*/
func TestVerify_Header(t *testing.T) {
	service := token.NewService(testSecret)

	tokenString, err := service.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	var header token.Header
	require.NoError(t, token.Decode(strings.Split(tokenString, ".")[0], &header))
	assert.Equal(t, "HS256", header.Alg)
	assert.Equal(t, "JWT", header.Typ)
}

/*
TestVerify_Malformed covers structurally broken inputs: wrong segment counts
and empty segments all map to MALFORMED_TOKEN.
*/
func TestVerify_Malformed(t *testing.T) {
	service := token.NewService(testSecret)

	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "one segment", input: "abc"},
		{name: "two segments", input: "abc.def"},
		{name: "four segments", input: "a.b.c.d"},
		{name: "empty payload", input: "a..c"},
		{name: "empty signature", input: "a.b."},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := service.Verify(testCase.input)
			assert.False(t, result.Valid)
			assert.False(t, result.Expired)
			require.NotNil(t, result.Err)
			assert.Equal(t, apperr.CodeMalformedToken, result.Err.Code)
		})
	}
}

/*
TestVerify_TamperedPayload flips one character of the payload segment and
expects BAD_SIGNATURE — the signature must be checked before the payload is
ever decoded.
*/
func TestVerify_TamperedPayload(t *testing.T) {
	service := token.NewService(testSecret)

	tokenString, err := service.IssueAccessToken(token.AccessClaims{
		UserID: "user_42",
		Email:  "reader@example.com",
		Role:   "user",
	})
	require.NoError(t, err)

	parts := strings.Split(tokenString, ".")
	payload := []byte(parts[1])
	if payload[len(payload)-1] == 'A' {
		payload[len(payload)-1] = 'B'
	} else {
		payload[len(payload)-1] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	result := service.Verify(tampered)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperr.CodeBadSignature, result.Err.Code)
}

/*
TestVerify_WrongSecret ensures a token minted under one secret never verifies
under another.
*/
func TestVerify_WrongSecret(t *testing.T) {
	issuer := token.NewService(testSecret)
	verifier := token.NewService("a_completely_different_secret")

	tokenString, err := issuer.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	result := verifier.Verify(tokenString)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperr.CodeBadSignature, result.Err.Code)
}

/*
TestVerify_Expired moves the clock past the access token lifetime and expects
TOKEN_EXPIRED with the Expired flag set, so callers can branch into the
refresh path.
*/
func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, setNow := frozenClock(issuedAt)
	service := token.NewService(testSecret, token.WithClock(now))

	tokenString, err := service.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	setNow(issuedAt.Add(token.AccessTokenTTL).Add(time.Millisecond))

	result := service.Verify(tokenString)
	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
	require.NotNil(t, result.Err)
	assert.Equal(t, apperr.CodeTokenExpired, result.Err.Code)
}

/*
TestShouldRefresh exercises the rotation window: recommended only when the
remaining lifetime is strictly between zero and the refresh threshold.
*/
func TestShouldRefresh(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, setNow := frozenClock(issuedAt)
	service := token.NewService(testSecret, token.WithClock(now))

	tokenString, err := service.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	testCases := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{
			name:     "fresh token is outside the window",
			at:       issuedAt,
			expected: false,
		},
		{
			name:     "inside the window",
			at:       issuedAt.Add(token.AccessTokenTTL).Add(-12 * time.Hour),
			expected: true,
		},
		{
			name:     "one millisecond before expiry",
			at:       issuedAt.Add(token.AccessTokenTTL).Add(-time.Millisecond),
			expected: true,
		},
		{
			name:     "already expired",
			at:       issuedAt.Add(token.AccessTokenTTL).Add(time.Hour),
			expected: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			setNow(testCase.at)
			assert.Equal(t, testCase.expected, service.ShouldRefresh(tokenString))
		})
	}

	t.Run("garbage input", func(t *testing.T) {
		assert.False(t, service.ShouldRefresh("not.a.token"))
	})
}

/*
TestRefresh covers the refresh exchange: a valid refresh token yields a new
access token carrying the supplied snapshot; an access token presented as a
refresh token, or garbage, fails with INVALID_REFRESH_TOKEN.
*/
func TestRefresh(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, _ := frozenClock(issuedAt)
	service := token.NewService(testSecret, token.WithClock(now))

	refreshToken, err := service.IssueRefreshToken("user_42")
	require.NoError(t, err)

	t.Run("valid exchange", func(t *testing.T) {
		accessToken, err := service.Refresh(refreshToken, token.AccessClaims{
			UserID: "user_42",
			Email:  "reader@example.com",
			Role:   "moderator",
		})
		require.NoError(t, err)

		result := service.Verify(accessToken)
		require.True(t, result.Valid)
		assert.Equal(t, "moderator", result.Claims.Role)
		assert.Empty(t, result.Claims.Type)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		accessToken, err := service.IssueAccessToken(token.AccessClaims{UserID: "user_42"})
		require.NoError(t, err)

		_, err = service.Refresh(accessToken, token.AccessClaims{UserID: "user_42"})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidRefreshToken))
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		_, err := service.Refresh("nope", token.AccessClaims{UserID: "user_42"})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidRefreshToken))
	})
}

/*
TestIssueRefreshToken_Claims ensures refresh tokens carry only the user ID,
the refresh type marker, and an expiry 30 days out — no identity snapshot.
*/
func TestIssueRefreshToken_Claims(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now, _ := frozenClock(issuedAt)
	service := token.NewService(testSecret, token.WithClock(now))

	refreshToken, err := service.IssueRefreshToken("user_42")
	require.NoError(t, err)

	claims := service.DecodeUnverified(refreshToken)
	require.NotNil(t, claims)
	assert.Equal(t, "user_42", claims.UserID)
	assert.Equal(t, token.TypeRefresh, claims.Type)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Role)
	assert.Zero(t, claims.IssuedAt)
	assert.Equal(t, issuedAt.UnixMilli()+token.RefreshTokenTTL.Milliseconds(), claims.ExpiresAt)
}

/*
TestDecodeUnverified never errors: any structural failure yields nil, and a
valid token decodes without touching the signature.
*/
func TestDecodeUnverified(t *testing.T) {
	service := token.NewService(testSecret)

	assert.Nil(t, service.DecodeUnverified(""))
	assert.Nil(t, service.DecodeUnverified("a.b"))
	assert.Nil(t, service.DecodeUnverified("a.!!!.c"))

	tokenString, err := service.IssueAccessToken(token.AccessClaims{UserID: "u1"})
	require.NoError(t, err)

	// Break the signature; decoding must still work.
	parts := strings.Split(tokenString, ".")
	claims := service.DecodeUnverified(parts[0] + "." + parts[1] + ".forged")
	require.NotNil(t, claims)
	assert.Equal(t, "u1", claims.UserID)
}
