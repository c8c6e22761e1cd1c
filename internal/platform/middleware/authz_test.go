// Copyright (c) 2026 Postify. All rights reserved.

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postify/identity/internal/platform/middleware"
	"github.com/postify/identity/internal/platform/sec"
)

// stubVerifier accepts exactly one token string.
type stubVerifier struct {
	accepted string
	claims   *sec.AuthClaims
}

func (verifier *stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == verifier.accepted {
		return verifier.claims, nil
	}
	return nil, errors.New("invalid token")
}

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := middleware.GetUser(request)
		if claims != nil {
			writer.Header().Set("X-Test-User", claims.UserID)
		}
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate is non-blocking: valid tokens attach claims, missing and
invalid tokens proceed anonymously.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &stubVerifier{
		accepted: "good-token",
		claims:   &sec.AuthClaims{UserID: "user_42", Role: sec.RoleUser},
	}
	handler := middleware.Authenticate(verifier)(protectedHandler())

	testCases := []struct {
		name         string
		header       string
		expectedUser string
	}{
		{name: "valid bearer token", header: "Bearer good-token", expectedUser: "user_42"},
		{name: "invalid token proceeds anonymously", header: "Bearer bad-token", expectedUser: ""},
		{name: "missing header proceeds anonymously", header: "", expectedUser: ""},
		{name: "wrong scheme proceeds anonymously", header: "Basic abc", expectedUser: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			if testCase.header != "" {
				request.Header.Set("Authorization", testCase.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, testCase.expectedUser, recorder.Header().Get("X-Test-User"))
		})
	}
}

/*
TestRequireAuth enforces presence of an authenticated identity.
*/
func TestRequireAuth(t *testing.T) {
	verifier := &stubVerifier{
		accepted: "good-token",
		claims:   &sec.AuthClaims{UserID: "user_42", Role: sec.RoleUser},
	}
	handler := middleware.Authenticate(verifier)(middleware.RequireAuth()(protectedHandler()))

	request := httptest.NewRequest("GET", "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request = httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequireRole distinguishes 401 (anonymous) from 403 (insufficient role).
*/
func TestRequireRole(t *testing.T) {
	adminOnly := middleware.RequireRole(sec.RoleAdmin)

	run := func(role sec.UserRole, token string) *httptest.ResponseRecorder {
		verifier := &stubVerifier{
			accepted: "good-token",
			claims:   &sec.AuthClaims{UserID: "user_42", Role: role},
		}
		handler := middleware.Authenticate(verifier)(adminOnly(protectedHandler()))

		request := httptest.NewRequest("GET", "/", nil)
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusUnauthorized, run(sec.RoleAdmin, "").Code)
	assert.Equal(t, http.StatusForbidden, run(sec.RoleUser, "good-token").Code)
	assert.Equal(t, http.StatusForbidden, run(sec.RoleModerator, "good-token").Code)
	assert.Equal(t, http.StatusOK, run(sec.RoleAdmin, "good-token").Code)
}
