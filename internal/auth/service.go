// Copyright (c) 2026 Postify. All rights reserved.

/*
Package auth implements the Postify identity engine: account directory,
credential checks, token-backed sessions, and auth state broadcasting.

It is a faithful server-side rendition of the session lifecycle the browser
build of Postify runs client-side, behind storage and token-engine interfaces
so the same [Service] drives both the local mode (durable file store + legacy
token math) and the remote mode (PostgreSQL + Redis + HMAC JWTs).

Core Responsibilities:

  - Accounts: registration, credential login, simulated OAuth login.
  - Sessions: a single current session, restored with silent refresh.
  - Tokens: issuance and verification delegated to a [TokenEngine].
  - Events: SIGNED_IN / SIGNED_OUT fan-out via an injected [Broadcaster].
  - Administration: role changes, deletion, dashboard statistics.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/internal/platform/validate"
	"github.com/postify/identity/internal/token"
	"github.com/postify/identity/pkg/uuid"
)

// # Bootstrap Constants

// Seed values for the guaranteed admin account and the simulated OAuth
// accounts. They match the browser build so a directory created there
// authenticates here unchanged.
const (
	bootstrapAdminID       = "admin_001"
	bootstrapAdminEmail    = "admin@postify.com"
	bootstrapAdminPassword = "admin123"
	bootstrapAdminName     = "Admin User"
	bootstrapAdminUsername = "admin"

	oauthDemoPassword = "demo123"
)

// # Service

// Service is the identity engine. One instance serves the whole process.
//
// # Concurrency
//
// The session lifecycle (login, logout, restore-with-refresh) is a
// read-modify-write over a single stored session, serialized by sessionMu.
// Directory reads and token verification take no lock.
type Service struct {
	users    UserDirectory
	sessions SessionStore
	tokens   TokenEngine
	hasher   sec.PasswordHasher
	events   *Broadcaster
	posts    PostCounter
	logger   *slog.Logger
	now      func() time.Time

	sessionMu sync.Mutex
}

// ServiceOption customizes a [Service].
type ServiceOption func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *Service) { service.now = now }
}

// WithPostCounter wires a content counter into dashboard statistics.
func WithPostCounter(posts PostCounter) ServiceOption {
	return func(service *Service) { service.posts = posts }
}

// NewService constructs the identity engine from its dependencies.
func NewService(
	users UserDirectory,
	sessions SessionStore,
	tokens TokenEngine,
	hasher sec.PasswordHasher,
	events *Broadcaster,
	logger *slog.Logger,
	options ...ServiceOption,
) *Service {
	service := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Bootstrap

/*
EnsureAdmin guarantees the seed admin account exists.

Called explicitly at startup, never as a hidden side effect of directory
reads. Idempotent: an existing admin record (matched by email) is left
untouched, including any password it may have been changed to.
*/
func (service *Service) EnsureAdmin(ctx context.Context) error {
	existing, err := service.users.FindByEmail(ctx, bootstrapAdminEmail)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	digest, err := service.hasher.Hash(bootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	admin := User{
		ID:             bootstrapAdminID,
		Email:          bootstrapAdminEmail,
		PasswordDigest: digest,
		Role:           sec.RoleAdmin,
		Profile: Profile{
			FullName:  bootstrapAdminName,
			Username:  bootstrapAdminUsername,
			AvatarURL: DefaultAvatarURL(bootstrapAdminUsername),
		},
		CreatedAt: service.now(),
	}

	if err := service.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	service.logger.InfoContext(ctx, "admin_account_seeded",
		slog.String("user_id", admin.ID),
	)
	return nil
}

// # Registration

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

/*
Register creates a new account with the default "user" role and signs it in.

Description:

	Registration mints tokens and persists the session just like a login, but
	does NOT fire SIGNED_IN; only an explicit login announces itself to
	subscribers. Duplicate email is checked before duplicate username, so a
	request failing both reports EMAIL_TAKEN.

Returns:
  - *User: the sanitized new account
  - *Session: the freshly persisted session for the account
  - error: VALIDATION_ERROR, EMAIL_TAKEN, or USERNAME_TAKEN
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, *Session, error) {
	validator := &validate.Validator{}
	validator.
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 6).
		Required("full_name", input.FullName).
		MaxLen("full_name", input.FullName, 100).
		Required("username", input.Username).
		Username("username", input.Username).
		MaxLen("username", input.Username, 30)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	// Duplicate checks, email first.
	byEmail, err := service.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}
	if byEmail != nil {
		return nil, nil, apperr.EmailTaken()
	}

	byUsername, err := service.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}
	if byUsername != nil {
		return nil, nil, apperr.UsernameTaken()
	}

	digest, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	user := User{
		ID:             uuid.New(),
		Email:          input.Email,
		PasswordDigest: digest,
		Role:           sec.RoleUser,
		Profile: Profile{
			FullName:  input.FullName,
			Username:  input.Username,
			AvatarURL: DefaultAvatarURL(input.Username),
		},
		CreatedAt: service.now(),
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	service.logger.InfoContext(ctx, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Profile.Username),
	)

	session, err := service.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	sanitized := user.Sanitized()
	return &sanitized, session, nil
}

// # Login & Logout

/*
Login verifies credentials and starts a session.

Description:

	Both the unknown-email and wrong-password paths return the same
	INVALID_CREDENTIALS error, so a caller can never probe which emails are
	registered. On success the previous session (if any) is replaced and
	SIGNED_IN fires with the new session.
*/
func (service *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil || !service.hasher.Compare(password, user.PasswordDigest) {
		return nil, apperr.InvalidCredentials()
	}

	session, err := service.startSession(ctx, *user)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_signed_in",
		slog.String("user_id", user.ID),
	)

	service.events.Publish(EventSignedIn, session)
	return session, nil
}

/*
LoginWithOAuth simulates a third-party OAuth flow.

Description:

	Each provider maps to a deterministic demo account
	(demo_<provider>@example.com) that is created on first use and reused
	afterwards. The resulting session matches a credential login, but like
	registration the simulated flow stays silent: SIGNED_IN fires only on an
	explicit login.
*/
func (service *Service) LoginWithOAuth(ctx context.Context, provider string) (*Session, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, apperr.ValidationError("Provider is required")
	}

	email := "demo_" + provider + "@example.com"

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("oauth login: %w", err)
	}

	if user == nil {
		digest, err := service.hasher.Hash(oauthDemoPassword)
		if err != nil {
			return nil, fmt.Errorf("oauth login: %w", err)
		}

		created := User{
			ID:             uuid.New(),
			Email:          email,
			PasswordDigest: digest,
			Role:           sec.RoleUser,
			Profile: Profile{
				FullName:  capitalize(provider) + " User",
				Username:  provider + "_user",
				AvatarURL: DefaultAvatarURL(provider),
			},
			CreatedAt: service.now(),
		}
		if err := service.users.Create(ctx, created); err != nil {
			return nil, err
		}
		user = &created

		service.logger.InfoContext(ctx, "oauth_demo_account_created",
			slog.String("provider", provider),
			slog.String("user_id", created.ID),
		)
	}

	return service.startSession(ctx, *user)
}

// capitalize upper-cases the first letter of an ASCII provider name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

/*
Logout clears the current session and refresh token.

Idempotent: logging out with no active session is a success and still fires
SIGNED_OUT, matching the browser build's unconditional event.
*/
func (service *Service) Logout(ctx context.Context) error {
	service.sessionMu.Lock()
	err := service.clearSessionLocked(ctx)
	service.sessionMu.Unlock()
	if err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "user_signed_out")
	service.events.Publish(EventSignedOut, nil)
	return nil
}

// startSession mints tokens for the user and persists the new session,
// replacing any previous one.
func (service *Service) startSession(ctx context.Context, user User) (*Session, error) {
	service.sessionMu.Lock()
	defer service.sessionMu.Unlock()

	snapshot := token.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}

	accessToken, err := service.tokens.IssueAccessToken(snapshot)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := service.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	session := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitized(),
		ExpiresAt:    service.now().UnixMilli() + token.AccessTokenTTL.Milliseconds(),
	}

	if err := service.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := service.sessions.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return session, nil
}

// clearSessionLocked removes session state. Caller holds sessionMu.
func (service *Service) clearSessionLocked(ctx context.Context) error {
	if err := service.sessions.Save(ctx, nil); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := service.sessions.SaveRefreshToken(ctx, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// # Session Restoration

/*
GetSession returns the current session, transparently keeping it fresh.

Flow:
 1. No stored session -> (nil, nil). Signed out is not an error.
 2. Access token expired -> attempt a silent refresh via the stored refresh
    token. Success rewrites the stored session; failure clears all session
    state and returns (nil, nil).
 3. Access token inside the refresh window -> opportunistic rotation. Failure
    here is non-fatal: the still-valid session is returned as-is.
*/
func (service *Service) GetSession(ctx context.Context) (*Session, error) {
	service.sessionMu.Lock()
	defer service.sessionMu.Unlock()

	session, err := service.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	result := service.tokens.Verify(session.AccessToken)
	switch {
	case result.Expired:
		refreshed, err := service.refreshSessionLocked(ctx, session)
		if err != nil {
			// Unrecoverable expiry: drop all session state.
			service.logger.InfoContext(ctx, "session_expired_cleared",
				slog.String("user_id", session.User.ID),
			)
			if clearErr := service.clearSessionLocked(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, nil
		}
		return refreshed, nil

	case !result.Valid:
		// Tampered or malformed token: treat as no session.
		service.logger.WarnContext(ctx, "session_token_rejected",
			slog.String("code", result.Err.Code),
		)
		if err := service.clearSessionLocked(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	// Valid but close to expiry: rotate opportunistically. A failure here is
	// swallowed — the session in hand is still good.
	if service.tokens.ShouldRefresh(session.AccessToken) {
		if refreshed, err := service.refreshSessionLocked(ctx, session); err == nil {
			return refreshed, nil
		}
	}

	return session, nil
}

// refreshSessionLocked exchanges the stored refresh token for a new access
// token and rewrites the stored session. Caller holds sessionMu.
func (service *Service) refreshSessionLocked(ctx context.Context, session *Session) (*Session, error) {
	refreshToken, err := service.sessions.LoadRefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if refreshToken == "" {
		return nil, apperr.InvalidRefreshToken("No refresh token available")
	}

	// Re-read the directory so role changes propagate into the new token.
	user, err := service.users.FindByID(ctx, session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if user == nil {
		return nil, apperr.UserNotFound()
	}

	accessToken, err := service.tokens.Refresh(refreshToken, token.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	refreshed := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitized(),
		ExpiresAt:    service.now().UnixMilli() + token.AccessTokenTTL.Milliseconds(),
	}

	if err := service.sessions.Save(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}

	service.logger.InfoContext(ctx, "session_silently_refreshed",
		slog.String("user_id", user.ID),
	)
	return refreshed, nil
}

// GetCurrentUser returns the user of the current session, or (nil, nil) when
// signed out. Runs the same silent-refresh path as [Service.GetSession].
func (service *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	session, err := service.GetSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

// # Event Subscription

/*
OnAuthStateChange registers a callback for auth state transitions and returns
its unsubscribe function.

Replay: if a stored session exists and its expires_at is still in the future,
the callback is invoked immediately with SIGNED_IN before this method returns.
The replay check reads expires_at only — it does not verify the token — so a
subscriber sees the same fast-path the browser build's listener does.
*/
func (service *Service) OnAuthStateChange(ctx context.Context, callback Callback) (unsubscribe func()) {
	unsubscribe = service.events.Subscribe(callback)

	session, err := service.sessions.Load(ctx)
	if err == nil && session != nil && session.ExpiresAt > service.now().UnixMilli() {
		callback(EventSignedIn, session)
	}

	return unsubscribe
}

// # Token Verification (middleware seam)

// VerifyToken validates an access token string and returns the identity
// claims it carries. Satisfies the HTTP middleware's TokenVerifier contract.
func (service *Service) VerifyToken(tokenString string) (*sec.AuthClaims, error) {
	result := service.tokens.Verify(tokenString)
	if !result.Valid {
		return nil, result.Err
	}
	if result.Claims.Type == token.TypeRefresh {
		return nil, apperr.MalformedToken()
	}
	return &sec.AuthClaims{
		UserID: result.Claims.UserID,
		Email:  result.Claims.Email,
		Role:   sec.UserRole(result.Claims.Role),
	}, nil
}

// # Profiles

// GetProfile returns the sanitized account with the given ID.
func (service *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if user == nil {
		return nil, apperr.UserNotFound()
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfileInput carries the editable profile fields. Nil pointers mean
// "leave unchanged", distinguishing omitted fields from explicit blanks.
type UpdateProfileInput struct {
	FullName  *string `json:"full_name"`
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
	Website   *string `json:"website"`
	Location  *string `json:"location"`
}

/*
UpdateProfile applies a partial profile update to the given account.

Description:

	A username change is checked for uniqueness against every other account.
	If the updated account is the one in the current session, the stored
	session's embedded user snapshot is rewritten so restores reflect the
	change immediately — tokens are NOT reissued, matching the browser build.
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if user == nil {
		return nil, apperr.UserNotFound()
	}

	if input.Username != nil && *input.Username != user.Profile.Username {
		validator := &validate.Validator{}
		validator.
			Required("username", *input.Username).
			Username("username", *input.Username).
			MaxLen("username", *input.Username, 30)
		if err := validator.Err(); err != nil {
			return nil, err
		}

		existing, err := service.users.FindByUsername(ctx, *input.Username)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if existing != nil && existing.ID != user.ID {
			return nil, apperr.UsernameTaken()
		}
		user.Profile.Username = *input.Username
	}

	if input.FullName != nil {
		user.Profile.FullName = *input.FullName
	}
	if input.AvatarURL != nil {
		user.Profile.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		user.Profile.Bio = *input.Bio
	}
	if input.Website != nil {
		user.Profile.Website = *input.Website
	}
	if input.Location != nil {
		user.Profile.Location = *input.Location
	}

	if err := service.users.Update(ctx, *user); err != nil {
		return nil, err
	}

	// Keep the stored session's user snapshot in sync.
	service.sessionMu.Lock()
	session, loadErr := service.sessions.Load(ctx)
	if loadErr == nil && session != nil && session.User.ID == user.ID {
		session.User = user.Sanitized()
		if saveErr := service.sessions.Save(ctx, session); saveErr != nil {
			service.sessionMu.Unlock()
			return nil, fmt.Errorf("update profile: %w", saveErr)
		}
	}
	service.sessionMu.Unlock()

	service.logger.InfoContext(ctx, "profile_updated",
		slog.String("user_id", user.ID),
	)

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// # Password Recovery

/*
ResetPassword simulates sending a password recovery email.

Always succeeds, whether or not the email is registered, so the endpoint
cannot be used to enumerate accounts. The "delivery" is a log line — there is
no mail integration, matching the browser build's simulation.
*/
func (service *Service) ResetPassword(ctx context.Context, email string) error {
	validator := &validate.Validator{}
	validator.Required("email", email).Email("email", email)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if user != nil {
		service.logger.InfoContext(ctx, "password_reset_simulated",
			slog.String("user_id", user.ID),
		)
	}
	return nil
}

// UpdatePassword replaces the password of the given account.
func (service *Service) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required("password", newPassword).MinLen("password", newPassword, 6)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if user == nil {
		return apperr.UserNotFound()
	}

	digest, err := service.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	user.PasswordDigest = digest

	if err := service.users.Update(ctx, *user); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "password_updated",
		slog.String("user_id", user.ID),
	)
	return nil
}
