// Copyright (c) 2026 Postify. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Postify.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Kinds: Every failure the identity engine can produce has a stable code
    (EMAIL_TAKEN, BAD_SIGNATURE, ...) that callers branch on.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Postify identity API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "EMAIL_TAKEN").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Error Codes

// Stable discriminators for every failure kind the identity engine produces.
// Clients and tests match on these, never on message text.
const (
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeSelfDemotion        = "SELF_DEMOTION"
	CodeSelfDeletion        = "SELF_DELETION"
	CodeInvalidRole         = "INVALID_ROLE"
	CodeMalformedToken      = "MALFORMED_TOKEN"
	CodeBadSignature        = "BAD_SIGNATURE"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeDecodeError         = "DECODE_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// # Identity Errors

// EmailTaken creates a 409 [AppError] for a duplicate email address.
func EmailTaken() *AppError {
	return &AppError{
		Code:       CodeEmailTaken,
		Message:    "This email address is already in use",
		HTTPStatus: http.StatusConflict,
	}
}

// UsernameTaken creates a 409 [AppError] for a duplicate username.
func UsernameTaken() *AppError {
	return &AppError{
		Code:       CodeUsernameTaken,
		Message:    "This username is already in use",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidCredentials creates a 401 [AppError].
//
// The message deliberately never reveals which of the two fields was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Email or password incorrect",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// UserNotFound creates a 404 [AppError] for an unknown user ID.
func UserNotFound() *AppError {
	return &AppError{
		Code:       CodeUserNotFound,
		Message:    "User not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// SelfDemotion creates a 403 [AppError] raised when an admin tries to remove
// their own admin role.
func SelfDemotion() *AppError {
	return &AppError{
		Code:       CodeSelfDemotion,
		Message:    "You cannot remove your own admin role",
		HTTPStatus: http.StatusForbidden,
	}
}

// SelfDeletion creates a 403 [AppError] raised when an admin tries to delete
// their own account.
func SelfDeletion() *AppError {
	return &AppError{
		Code:       CodeSelfDeletion,
		Message:    "You cannot delete your own account",
		HTTPStatus: http.StatusForbidden,
	}
}

// InvalidRole creates a 400 [AppError] for a role outside the known enum.
func InvalidRole(role string) *AppError {
	return &AppError{
		Code:       CodeInvalidRole,
		Message:    fmt.Sprintf("%q is not a valid role", role),
		HTTPStatus: http.StatusBadRequest,
	}
}

// # Token Lifecycle Errors

// MalformedToken creates a 401 [AppError] for a token that does not split into
// three non-empty dot-separated segments.
func MalformedToken() *AppError {
	return &AppError{
		Code:       CodeMalformedToken,
		Message:    "Invalid token format",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// BadSignature creates a 401 [AppError] for a signature mismatch.
func BadSignature() *AppError {
	return &AppError{
		Code:       CodeBadSignature,
		Message:    "Invalid signature",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenExpired creates a 401 [AppError] for a structurally valid but expired token.
func TokenExpired() *AppError {
	return &AppError{
		Code:       CodeTokenExpired,
		Message:    "Token expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidRefreshToken creates a 401 [AppError] for an unusable refresh token.
func InvalidRefreshToken(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidRefreshToken,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// DecodeError creates a 400 [AppError] for undecodable token segments.
func DecodeError(cause error) *AppError {
	return &AppError{
		Code:       CodeDecodeError,
		Message:    "Malformed token segment",
		HTTPStatus: http.StatusBadRequest,
		Cause:      cause,
	}
}

// # Generic Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Post") // Returns "Post not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Is reports whether err carries the given stable error code.
func Is(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
