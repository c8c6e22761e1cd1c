// Copyright (c) 2026 Postify. All rights reserved.

package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/token"
)

/*
TestCodec_RoundTrip ensures Decode is the exact inverse of Encode, including
for claims carrying non-ASCII text.
*/
func TestCodec_RoundTrip(t *testing.T) {
	original := token.Claims{
		UserID:    "user_42",
		Email:     "jürgen@example.com",
		Role:      "user",
		IssuedAt:  1764000000000,
		ExpiresAt: 1764604800000,
	}

	encoded, err := token.Encode(original)
	require.NoError(t, err)

	// Text-safe alphabet: no padding, no '+', no '/'.
	assert.NotContains(t, encoded, "=")
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")

	var decoded token.Claims
	require.NoError(t, token.Decode(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

/*
TestCodec_ToleratesPadding ensures segments produced by padding encoders
still decode.
*/
func TestCodec_ToleratesPadding(t *testing.T) {
	encoded, err := token.Encode(map[string]string{"k": "v"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, token.Decode(encoded+"==", &decoded))
	assert.Equal(t, "v", decoded["k"])
}

/*
TestCodec_DecodeFailures maps every malformed input to DECODE_ERROR: invalid
base64 and valid base64 wrapping invalid JSON.
*/
func TestCodec_DecodeFailures(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "invalid base64", input: "!!!not-base64!!!"},
		{name: "valid base64, invalid JSON", input: "bm90LWpzb24"}, // "not-json"
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var into map[string]any
			err := token.Decode(testCase.input, &into)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeDecodeError))
		})
	}
}
