// Copyright (c) 2026 Postify. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/validate"
)

/*
TestValidator_AllPass ensures a fully valid input produces no error.
*/
func TestValidator_AllPass(t *testing.T) {
	v := &validate.Validator{}
	v.
		Required("email", "reader@example.com").
		Email("email", "reader@example.com").
		Required("username", "reader_42").
		Username("username", "reader_42").
		MinLen("password", "hunter2x", 6).
		MaxLen("full_name", "Avid Reader", 100)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Err())
}

/*
TestValidator_CollectsAllFailures ensures the validator is not
short-circuiting: every failed rule contributes a field error to the single
VALIDATION_ERROR.
*/
func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	v.
		Required("email", "").
		Email("email", "").
		Required("password", "").
		MinLen("password", "", 6)

	require.True(t, v.HasErrors())

	err := v.Err()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Len(t, appError.Details, 4)
}

func TestValidator_Email(t *testing.T) {
	testCases := []struct {
		input string
		valid bool
	}{
		{input: "reader@example.com", valid: true},
		{input: "first.last+tag@sub.example.co", valid: true},
		{input: "not-an-email", valid: false},
		{input: "@example.com", valid: false},
		{input: "user@", valid: false},
	}

	for _, testCase := range testCases {
		v := &validate.Validator{}
		v.Email("email", testCase.input)
		assert.Equal(t, !testCase.valid, v.HasErrors(), "input %q", testCase.input)
	}
}

func TestValidator_Username(t *testing.T) {
	testCases := []struct {
		input string
		valid bool
	}{
		{input: "reader_42", valid: true},
		{input: "Reader-42", valid: true},
		{input: "demo_google", valid: true},
		{input: "has space", valid: false},
		{input: "p@t", valid: false},
		{input: "ünïcode", valid: false},
	}

	for _, testCase := range testCases {
		v := &validate.Validator{}
		v.Username("username", testCase.input)
		assert.Equal(t, !testCase.valid, v.HasErrors(), "input %q", testCase.input)
	}
}

/*
TestValidator_Lengths ensures MinLen/MaxLen count Unicode characters, not
bytes.
*/
func TestValidator_Lengths(t *testing.T) {
	v := &validate.Validator{}
	v.MinLen("bio", "héllo!", 6) // 6 characters, 7 bytes
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.MaxLen("bio", "héllo!", 5)
	assert.True(t, v.HasErrors())
}

func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("role", "moderator", "admin", "moderator", "user")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.OneOf("role", "superuser", "admin", "moderator", "user")
	assert.True(t, v.HasErrors())
}

func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("terms", true, "Terms must be accepted")

	err := v.Err()
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "terms", appError.Details[0].Field)
	assert.Equal(t, "Terms must be accepted", appError.Details[0].Message)
}
