// Copyright (c) 2026 Postify. All rights reserved.

package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/internal/platform/validate"
	"github.com/postify/identity/pkg/pagination"
	"github.com/postify/identity/pkg/uuid"
)

// excerptLength is the number of characters lifted from the content when the
// author does not supply an excerpt.
const excerptLength = 160

// Service implements the post catalogue operations.
type Service struct {
	posts  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the content service.
func NewService(posts Store, logger *slog.Logger) *Service {
	return &Service{posts: posts, logger: logger, now: time.Now}
}

// List returns a page of posts, newest first.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]Post, pagination.Meta, error) {
	catalogue, err := service.posts.List(ctx)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list posts: %w", err)
	}

	total := int64(len(catalogue))
	start := params.Offset()
	if start > len(catalogue) {
		start = len(catalogue)
	}
	end := start + params.Limit()
	if end > len(catalogue) {
		end = len(catalogue)
	}

	return catalogue[start:end], pagination.NewMeta(params, total), nil
}

// Get returns the post with the given ID.
func (service *Service) Get(ctx context.Context, id string) (*Post, error) {
	post, err := service.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, apperr.NotFound("Post")
	}
	return post, nil
}

// CreateInput is the payload for publishing a post.
type CreateInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Tags     []string `json:"tags"`
	CoverURL string   `json:"cover_url"`
}

// Create publishes a new post authored by the given identity.
func (service *Service) Create(ctx context.Context, author *sec.AuthClaims, authorName string, input CreateInput) (*Post, error) {
	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).
		MaxLen("title", input.Title, 200).
		Required("content", input.Content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = makeExcerpt(input.Content)
	}

	currentTime := service.now()
	post := Post{
		ID:         uuid.New(),
		Title:      input.Title,
		Content:    input.Content,
		Excerpt:    excerpt,
		Tags:       input.Tags,
		CoverURL:   input.CoverURL,
		AuthorID:   author.UserID,
		AuthorName: authorName,
		CreatedAt:  currentTime,
		UpdatedAt:  currentTime,
	}

	if err := service.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	service.logger.InfoContext(ctx, "post_published",
		slog.String("post_id", post.ID),
		slog.String("author_id", author.UserID),
	)
	return &post, nil
}

// UpdateInput carries the editable post fields. Nil means "leave unchanged".
type UpdateInput struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Excerpt  *string   `json:"excerpt"`
	Tags     *[]string `json:"tags"`
	CoverURL *string   `json:"cover_url"`
}

// Update applies a partial edit. Only the author, a moderator, or an admin
// may edit a post.
func (service *Service) Update(ctx context.Context, actor *sec.AuthClaims, id string, input UpdateInput) (*Post, error) {
	post, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != actor.UserID && !actor.Role.AtLeast(sec.RoleModerator) {
		return nil, apperr.Forbidden("You can only edit your own posts")
	}

	if input.Title != nil {
		validator := &validate.Validator{}
		validator.Required("title", *input.Title).MaxLen("title", *input.Title, 200)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
		if input.Excerpt == nil && post.Excerpt == "" {
			post.Excerpt = makeExcerpt(*input.Content)
		}
	}
	if input.Excerpt != nil {
		post.Excerpt = *input.Excerpt
	}
	if input.Tags != nil {
		post.Tags = *input.Tags
	}
	if input.CoverURL != nil {
		post.CoverURL = *input.CoverURL
	}
	post.UpdatedAt = service.now()

	if err := service.posts.Update(ctx, *post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// Delete removes a post. Only the author, a moderator, or an admin may
// delete a post.
func (service *Service) Delete(ctx context.Context, actor *sec.AuthClaims, id string) error {
	post, err := service.Get(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != actor.UserID && !actor.Role.AtLeast(sec.RoleModerator) {
		return apperr.Forbidden("You can only delete your own posts")
	}

	if err := service.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	service.logger.InfoContext(ctx, "post_deleted",
		slog.String("post_id", id),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// CountPosts reports the catalogue size. Satisfies the identity engine's
// dashboard counter contract.
func (service *Service) CountPosts(ctx context.Context) (int64, error) {
	return service.posts.Count(ctx)
}

// makeExcerpt lifts the first characters of the content.
func makeExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:excerptLength]) + "…"
}
