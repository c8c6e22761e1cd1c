// Copyright (c) 2026 Postify. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/ctxutil"
	"github.com/postify/identity/internal/platform/sec"
)

// # Authentication & Authorization

// TokenVerifier validates an access token string and returns the identity it
// carries. The auth service satisfies this interface regardless of which token
// engine it was wired with.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

/*
Authenticate extracts and validates the Bearer token from the Authorization header.

Description:

	This middleware is non-blocking. If a valid token is present, the decoded
	claims are attached to the request context. If the token is missing or
	invalid, the request proceeds anonymously — enforcement is the job of
	RequireAuth and RequireRole further down the chain.
*/
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the raw token from the Authorization header
			header := request.Header.Get(constants.HeaderAuthorization)
			token, found := strings.CutPrefix(header, constants.BearerPrefix)
			if !found || token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Verify the token signature and expiry
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				// Invalid tokens are treated as anonymous, not rejected here
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Attach the verified identity to the context
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401 Unauthorized.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

/*
RequireRole rejects requests whose authenticated user does not hold at least
the given role.

# Parameters
  - minimum: the lowest role allowed through (e.g. sec.RoleAdmin)

Description:

	Must be mounted after Authenticate. Unauthenticated requests receive 401,
	authenticated requests with an insufficient role receive 403.
*/
func RequireRole(minimum sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !claims.Role.AtLeast(minimum) {
				writeError(writer, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser returns the authenticated claims for the request, or nil.
func GetUser(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}
