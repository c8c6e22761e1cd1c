// Copyright (c) 2026 Postify. All rights reserved.

package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postify/identity/internal/platform/middleware"
	requestutil "github.com/postify/identity/internal/platform/request"
	"github.com/postify/identity/internal/platform/respond"
	"github.com/postify/identity/pkg/pagination"
)

// # HTTP Transport

// Handler exposes the post catalogue over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds the HTTP handler for the content service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the post routes on the router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/posts", func(postRouter chi.Router) {
		postRouter.Get("/", handler.list)
		postRouter.Get("/{postID}", handler.get)

		postRouter.Group(func(privateRouter chi.Router) {
			privateRouter.Use(middleware.RequireAuth())
			privateRouter.Post("/", handler.create)
			privateRouter.Put("/{postID}", handler.update)
			privateRouter.Delete("/{postID}", handler.delete)
		})
	})
}

func (handler *Handler) list(writer http.ResponseWriter, req *http.Request) {
	params := pagination.FromRequest(req)

	posts, meta, err := handler.service.List(req.Context(), params)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, posts, meta)
}

func (handler *Handler) get(writer http.ResponseWriter, req *http.Request) {
	post, err := handler.service.Get(req.Context(), requestutil.Param(req, "postID"))
	if err != nil {
		respond.Error(writer, req, err)
		return
	}
	respond.OK(writer, post)
}

type createRequest struct {
	CreateInput
	AuthorName string `json:"author_name"`
}

func (handler *Handler) create(writer http.ResponseWriter, req *http.Request) {
	claims, err := requestutil.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	post, err := handler.service.Create(req.Context(), claims, input.AuthorName, input.CreateInput)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, post)
}

func (handler *Handler) update(writer http.ResponseWriter, req *http.Request) {
	claims, err := requestutil.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(req, &input); err != nil {
		respond.Error(writer, req, err)
		return
	}

	post, err := handler.service.Update(req.Context(), claims, requestutil.Param(req, "postID"), input)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, post)
}

func (handler *Handler) delete(writer http.ResponseWriter, req *http.Request) {
	claims, err := requestutil.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.Delete(req.Context(), claims, requestutil.Param(req, "postID")); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
