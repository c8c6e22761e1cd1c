// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/middleware"
	requestutil "github.com/postify/identity/internal/platform/request"
	"github.com/postify/identity/internal/platform/respond"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/pkg/pagination"
)

// # HTTP Transport

// Handler exposes the identity engine over HTTP.
type Handler struct {
	provider Provider
}

// NewHandler builds the HTTP handler for the given provider.
func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes mounts all identity routes on the router.
//
// loginLimiter is the tightened per-IP rate limit applied only to
// credential-bearing endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router, loginLimiter func(http.Handler) http.Handler) {

	// Public auth surface
	router.Route("/auth", func(authRouter chi.Router) {
		authRouter.With(loginLimiter).Post("/register", handler.register)
		authRouter.With(loginLimiter).Post("/login", handler.login)
		authRouter.With(loginLimiter).Post("/oauth/{provider}", handler.loginWithOAuth)
		authRouter.Post("/logout", handler.logout)
		authRouter.Post("/reset-password", handler.resetPassword)
		authRouter.Get("/session", handler.getSession)

		// Authenticated self-service
		authRouter.Group(func(privateRouter chi.Router) {
			privateRouter.Use(middleware.RequireAuth())
			privateRouter.Get("/me", handler.getCurrentUser)
			privateRouter.Put("/password", handler.updatePassword)
		})
	})

	// Profiles
	router.Route("/profiles", func(profileRouter chi.Router) {
		profileRouter.Get("/{userID}", handler.getProfile)
		profileRouter.With(middleware.RequireAuth()).Put("/{userID}", handler.updateProfile)
	})

	// Administration
	router.Route("/admin", func(adminRouter chi.Router) {
		adminRouter.Use(middleware.RequireAuth())
		adminRouter.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRouter.Get("/users", handler.listUsers)
		adminRouter.Put("/users/{userID}/role", handler.updateUserRole)
		adminRouter.Delete("/users/{userID}", handler.deleteUser)
		adminRouter.Get("/stats", handler.getDashboardStats)
	})
}

// # Auth Handlers

func (handler *Handler) register(writer http.ResponseWriter, req *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, session, err := handler.provider.Register(req.Context(), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, registerResponse{User: user, Session: session})
}

type registerResponse struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) login(writer http.ResponseWriter, req *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	session, err := handler.provider.Login(req.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, session)
}

func (handler *Handler) loginWithOAuth(writer http.ResponseWriter, req *http.Request) {
	provider := requestutil.Param(req, "provider")

	session, err := handler.provider.LoginWithOAuth(req.Context(), provider)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, session)
}

func (handler *Handler) logout(writer http.ResponseWriter, req *http.Request) {
	if err := handler.provider.Logout(req.Context()); err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) getSession(writer http.ResponseWriter, req *http.Request) {
	session, err := handler.provider.GetSession(req.Context())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	// Signed out is a successful null, not an error.
	respond.OK(writer, session)
}

func (handler *Handler) getCurrentUser(writer http.ResponseWriter, req *http.Request) {
	user, err := handler.provider.GetCurrentUser(req.Context())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	if user == nil {
		respond.Error(writer, req, apperr.Unauthorized("No active session"))
		return
	}
	respond.OK(writer, user)
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, req *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.provider.ResetPassword(req.Context(), input.Email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, map[string]string{"message": "If the address exists, a recovery email has been sent"})
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

func (handler *Handler) updatePassword(writer http.ResponseWriter, req *http.Request) {
	userID, err := requestutil.RequiredUserID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.provider.UpdatePassword(req.Context(), userID, input.Password); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// # Profile Handlers

func (handler *Handler) getProfile(writer http.ResponseWriter, req *http.Request) {
	user, err := handler.provider.GetProfile(req.Context(), requestutil.Param(req, "userID"))
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) updateProfile(writer http.ResponseWriter, req *http.Request) {
	claims, err := requestutil.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	targetID := requestutil.Param(req, "userID")

	// Only the owner (or an admin) may edit a profile.
	if claims.UserID != targetID && claims.Role != sec.RoleAdmin {
		respond.Error(writer, req, apperr.Forbidden("You can only edit your own profile"))
		return
	}

	var input UpdateProfileInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.provider.UpdateProfile(req.Context(), targetID, input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, user)
}

// # Admin Handlers

func (handler *Handler) listUsers(writer http.ResponseWriter, req *http.Request) {
	actorID, err := requestutil.RequiredUserID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	params := pagination.FromRequest(req)
	users, meta, err := handler.provider.ListUsers(req.Context(), actorID, params)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (handler *Handler) updateUserRole(writer http.ResponseWriter, req *http.Request) {
	actorID, err := requestutil.RequiredUserID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input updateRoleRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.provider.UpdateUserRole(req.Context(), actorID, requestutil.Param(req, "userID"), sec.UserRole(input.Role))
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) deleteUser(writer http.ResponseWriter, req *http.Request) {
	actorID, err := requestutil.RequiredUserID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.provider.DeleteUser(req.Context(), actorID, requestutil.Param(req, "userID")); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) getDashboardStats(writer http.ResponseWriter, req *http.Request) {
	actorID, err := requestutil.RequiredUserID(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	stats, err := handler.provider.GetDashboardStats(req.Context(), actorID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, stats)
}
