// Copyright (c) 2026 Postify. All rights reserved.

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/postify/identity/internal/platform/apperr"
)

// # HMAC Engine (remote mode)

// JWTEngine mints and verifies real HMAC-SHA256 JWTs via golang-jwt.
//
// It exposes the exact method set of the legacy [Service] and normalizes
// verification into the same [VerifyResult]/[Claims] shapes, so the auth layer
// is engine-agnostic. Claim timestamps on the wire follow RFC 7519 (seconds);
// they are converted to milliseconds in the normalized [Claims].
type JWTEngine struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// jwtClaims is the wire shape of remote-mode tokens.
type jwtClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the payload small.
	UserID string `json:"uid,omitempty"`
	Email  string `json:"eml,omitempty"`
	Role   string `json:"rol,omitempty"`
	Kind   string `json:"knd,omitempty"`
}

// JWTOption customizes a [JWTEngine].
type JWTOption func(*JWTEngine)

// WithJWTClock replaces the wall clock used for issuance and validation.
func WithJWTClock(now func() time.Time) JWTOption {
	return func(engine *JWTEngine) { engine.now = now }
}

// NewJWTEngine constructs the HMAC-SHA256 token engine.
func NewJWTEngine(secret, issuer string, options ...JWTOption) *JWTEngine {
	engine := &JWTEngine{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, option := range options {
		option(engine)
	}

	engine.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return engine.now() }),
	)

	return engine
}

// # Issuance

// IssueAccessToken mints a signed HS256 access token for the given identity snapshot.
func (engine *JWTEngine) IssueAccessToken(claims AccessClaims) (string, error) {
	currentTime := engine.now()
	wireClaims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    engine.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(AccessTokenTTL)),
		},
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}

	return engine.sign(wireClaims)
}

// IssueRefreshToken mints a long-lived HS256 refresh token.
func (engine *JWTEngine) IssueRefreshToken(userID string) (string, error) {
	currentTime := engine.now()
	wireClaims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    engine.issuer,
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(RefreshTokenTTL)),
		},
		UserID: userID,
		Kind:   TypeRefresh,
	}

	return engine.sign(wireClaims)
}

// sign seals the claims with HMAC-SHA256.
func (engine *JWTEngine) sign(wireClaims jwtClaims) (string, error) {
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims).SignedString(engine.secret)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signedToken, nil
}

// # Verification

// Verify checks signature and validity, normalizing golang-jwt failures into
// the same stable codes the legacy engine produces.
func (engine *JWTEngine) Verify(tokenString string) VerifyResult {
	parsed, err := engine.parser.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return engine.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return VerifyResult{Expired: true, Err: apperr.TokenExpired()}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return VerifyResult{Err: apperr.BadSignature()}
		default:
			return VerifyResult{Err: apperr.MalformedToken()}
		}
	}

	wireClaims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return VerifyResult{Err: apperr.MalformedToken()}
	}

	return VerifyResult{Valid: true, Claims: normalize(wireClaims)}
}

// DecodeUnverified decodes claims without any verification. Inspection only.
func (engine *JWTEngine) DecodeUnverified(tokenString string) *Claims {
	parsed, _, err := engine.parser.ParseUnverified(tokenString, &jwtClaims{})
	if err != nil {
		return nil
	}

	wireClaims, ok := parsed.Claims.(*jwtClaims)
	if !ok {
		return nil
	}
	return normalize(wireClaims)
}

// ShouldRefresh reports whether the token sits inside the rotation window:
// true iff 0 < exp - now < [RefreshThreshold].
func (engine *JWTEngine) ShouldRefresh(tokenString string) bool {
	claims := engine.DecodeUnverified(tokenString)
	if claims == nil || claims.ExpiresAt == 0 {
		return false
	}

	untilExpiry := claims.ExpiresAt - engine.now().UnixMilli()
	return untilExpiry < RefreshThreshold.Milliseconds() && untilExpiry > 0
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (engine *JWTEngine) Refresh(refreshToken string, claims AccessClaims) (string, error) {
	result := engine.Verify(refreshToken)
	if !result.Valid {
		return "", apperr.InvalidRefreshToken("Invalid refresh token")
	}

	if result.Claims.Type != TypeRefresh {
		return "", apperr.InvalidRefreshToken("Invalid token type")
	}

	return engine.IssueAccessToken(claims)
}

// normalize converts wire claims into the engine-agnostic [Claims] shape.
func normalize(wireClaims *jwtClaims) *Claims {
	claims := &Claims{
		UserID: wireClaims.UserID,
		Email:  wireClaims.Email,
		Role:   wireClaims.Role,
		Type:   wireClaims.Kind,
	}
	if wireClaims.IssuedAt != nil {
		claims.IssuedAt = wireClaims.IssuedAt.UnixMilli()
	}
	if wireClaims.ExpiresAt != nil {
		claims.ExpiresAt = wireClaims.ExpiresAt.UnixMilli()
	}
	return claims
}
