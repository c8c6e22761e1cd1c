// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/postify/identity/internal/platform/constants"
	"github.com/postify/identity/internal/platform/kvstore"
)

// # Local User Directory

// KVUserDirectory stores the whole directory as one JSON array under the
// postify_users key, exactly as the browser build does.
//
// The directory is small by construction (a demo blog's user base), so
// read-modify-write of the full array is the simplest correct strategy.
type KVUserDirectory struct {
	store  kvstore.Store
	logger *slog.Logger
}

// NewKVUserDirectory builds a directory over the given key-value store.
func NewKVUserDirectory(store kvstore.Store, logger *slog.Logger) *KVUserDirectory {
	return &KVUserDirectory{store: store, logger: logger}
}

// load reads and decodes the full directory. Corrupt or absent state yields
// an empty directory.
func (directory *KVUserDirectory) load(ctx context.Context) ([]User, error) {
	raw, err := directory.store.Get(ctx, constants.StoreKeyUsers)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []User{}, nil
		}
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		// Corruption-as-absence: an unreadable directory is treated as empty,
		// never as a fatal error.
		directory.logger.WarnContext(ctx, "user_directory_corrupt",
			slog.String("key", constants.StoreKeyUsers),
			slog.String("error", err.Error()),
		)
		return []User{}, nil
	}
	return users, nil
}

// save encodes and writes the full directory.
func (directory *KVUserDirectory) save(ctx context.Context, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return directory.store.Set(ctx, constants.StoreKeyUsers, raw)
}

// List returns every account, oldest first.
func (directory *KVUserDirectory) List(ctx context.Context) ([]User, error) {
	return directory.load(ctx)
}

// FindByID returns the account with the given ID, or (nil, nil) if absent.
func (directory *KVUserDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	users, err := directory.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByEmail returns the account with the given email, or (nil, nil) if absent.
func (directory *KVUserDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	users, err := directory.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByUsername returns the account with the given handle, or (nil, nil) if absent.
func (directory *KVUserDirectory) FindByUsername(ctx context.Context, username string) (*User, error) {
	users, err := directory.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Profile.Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Create appends a new account record.
func (directory *KVUserDirectory) Create(ctx context.Context, user User) error {
	users, err := directory.load(ctx)
	if err != nil {
		return err
	}
	return directory.save(ctx, append(users, user))
}

// Update replaces the stored record with the same ID.
func (directory *KVUserDirectory) Update(ctx context.Context, user User) error {
	users, err := directory.load(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			break
		}
	}
	return directory.save(ctx, users)
}

// Delete removes the account with the given ID.
func (directory *KVUserDirectory) Delete(ctx context.Context, id string) error {
	users, err := directory.load(ctx)
	if err != nil {
		return err
	}

	remaining := users[:0]
	for _, existing := range users {
		if existing.ID != id {
			remaining = append(remaining, existing)
		}
	}
	return directory.save(ctx, remaining)
}

// # Local Session Store

// KVSessionStore persists the current session and refresh token under their
// dedicated keys in the durable local store.
type KVSessionStore struct {
	store  kvstore.Store
	logger *slog.Logger
}

// NewKVSessionStore builds a session store over the given key-value store.
func NewKVSessionStore(store kvstore.Store, logger *slog.Logger) *KVSessionStore {
	return &KVSessionStore{store: store, logger: logger}
}

// Load returns the stored session, or (nil, nil) if absent or corrupt.
func (sessions *KVSessionStore) Load(ctx context.Context) (*Session, error) {
	raw, err := sessions.store.Get(ctx, constants.StoreKeySession)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		sessions.logger.WarnContext(ctx, "session_corrupt_discarded",
			slog.String("key", constants.StoreKeySession),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &session, nil
}

// Save persists the session. A nil session removes any stored one.
func (sessions *KVSessionStore) Save(ctx context.Context, session *Session) error {
	if session == nil {
		return sessions.store.Delete(ctx, constants.StoreKeySession)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return sessions.store.Set(ctx, constants.StoreKeySession, raw)
}

// LoadRefreshToken returns the stored refresh token, or "" if absent.
func (sessions *KVSessionStore) LoadRefreshToken(ctx context.Context) (string, error) {
	raw, err := sessions.store.Get(ctx, constants.StoreKeyRefreshToken)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}

// SaveRefreshToken persists the refresh token. An empty value removes it.
func (sessions *KVSessionStore) SaveRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return sessions.store.Delete(ctx, constants.StoreKeyRefreshToken)
	}
	return sessions.store.Set(ctx, constants.StoreKeyRefreshToken, []byte(refreshToken))
}
