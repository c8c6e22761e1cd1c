// Copyright (c) 2026 Postify. All rights reserved.

package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/kvstore"
)

// Store is the persistence contract for the post catalogue.
type Store interface {

	// List returns every post, newest first.
	List(ctx context.Context) ([]Post, error)

	// FindByID returns the post with the given ID, or (nil, nil) if absent.
	FindByID(ctx context.Context, id string) (*Post, error)

	// Create appends a new post.
	Create(ctx context.Context, post Post) error

	// Update replaces the stored post with the same ID.
	Update(ctx context.Context, post Post) error

	// Delete removes the post with the given ID. Absent IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of posts.
	Count(ctx context.Context) (int64, error)
}

// # Local Store

// KVStore keeps the whole catalogue as one JSON array under the
// postify_posts key, mirroring the browser build.
type KVStore struct {
	store  kvstore.Store
	logger *slog.Logger
}

// NewKVStore builds a post store over the given key-value store.
func NewKVStore(store kvstore.Store, logger *slog.Logger) *KVStore {
	return &KVStore{store: store, logger: logger}
}

func (posts *KVStore) load(ctx context.Context) ([]Post, error) {
	raw, err := posts.store.Get(ctx, constants.StoreKeyPosts)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []Post{}, nil
		}
		return nil, err
	}

	var catalogue []Post
	if err := json.Unmarshal(raw, &catalogue); err != nil {
		// Corruption-as-absence, same policy as the user directory.
		posts.logger.WarnContext(ctx, "post_catalogue_corrupt",
			slog.String("key", constants.StoreKeyPosts),
			slog.String("error", err.Error()),
		)
		return []Post{}, nil
	}
	return catalogue, nil
}

func (posts *KVStore) save(ctx context.Context, catalogue []Post) error {
	raw, err := json.Marshal(catalogue)
	if err != nil {
		return err
	}
	return posts.store.Set(ctx, constants.StoreKeyPosts, raw)
}

// List returns every post, newest first.
func (posts *KVStore) List(ctx context.Context) ([]Post, error) {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return nil, err
	}

	// Stored oldest-first (append order); reverse for the feed.
	reversed := make([]Post, 0, len(catalogue))
	for i := len(catalogue) - 1; i >= 0; i-- {
		reversed = append(reversed, catalogue[i])
	}
	return reversed, nil
}

// FindByID returns the post with the given ID, or (nil, nil) if absent.
func (posts *KVStore) FindByID(ctx context.Context, id string) (*Post, error) {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range catalogue {
		if catalogue[i].ID == id {
			return &catalogue[i], nil
		}
	}
	return nil, nil
}

// Create appends a new post.
func (posts *KVStore) Create(ctx context.Context, post Post) error {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return err
	}
	return posts.save(ctx, append(catalogue, post))
}

// Update replaces the stored post with the same ID.
func (posts *KVStore) Update(ctx context.Context, post Post) error {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return err
	}
	for i := range catalogue {
		if catalogue[i].ID == post.ID {
			catalogue[i] = post
			break
		}
	}
	return posts.save(ctx, catalogue)
}

// Delete removes the post with the given ID.
func (posts *KVStore) Delete(ctx context.Context, id string) error {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return err
	}

	remaining := catalogue[:0]
	for _, existing := range catalogue {
		if existing.ID != id {
			remaining = append(remaining, existing)
		}
	}
	return posts.save(ctx, remaining)
}

// Count returns the total number of posts.
func (posts *KVStore) Count(ctx context.Context) (int64, error) {
	catalogue, err := posts.load(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(catalogue)), nil
}
