// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/dberr"
)

// # Remote User Directory

// PostgresUserDirectory implements [UserDirectory] over a PostgreSQL pool.
// Used in remote mode, where the directory can outgrow a single JSON blob.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresUserDirectory builds a directory over the given pool.
func NewPostgresUserDirectory(pool *pgxpool.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

const userColumns = `
	id, email, password_digest, role,
	full_name, username, avatar_url, bio, website, location,
	created_at
`

// scanUser maps one row onto a [User].
func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordDigest, &user.Role,
		&user.Profile.FullName, &user.Profile.Username, &user.Profile.AvatarURL,
		&user.Profile.Bio, &user.Profile.Website, &user.Profile.Location,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every account, oldest first.
func (directory *PostgresUserDirectory) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`

	rows, err := directory.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// findOne runs a single-row lookup, translating pgx absence into (nil, nil).
func (directory *PostgresUserDirectory) findOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(directory.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// FindByID returns the account with the given ID, or (nil, nil) if absent.
func (directory *PostgresUserDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	return directory.findOne(ctx, "id = $1", id)
}

// FindByEmail returns the account with the given email, or (nil, nil) if absent.
func (directory *PostgresUserDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	return directory.findOne(ctx, "email = $1", email)
}

// FindByUsername returns the account with the given handle, or (nil, nil) if absent.
func (directory *PostgresUserDirectory) FindByUsername(ctx context.Context, username string) (*User, error) {
	return directory.findOne(ctx, "username = $1", username)
}

// Create inserts a new account record. Unique constraint violations are
// translated into the same typed errors the duplicate pre-checks produce, so
// races between concurrent registrations stay well-behaved.
func (directory *PostgresUserDirectory) Create(ctx context.Context, user User) error {
	query := `
		INSERT INTO users (
			id, email, password_digest, role,
			full_name, username, avatar_url, bio, website, location,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := directory.pool.Exec(ctx, query,
		user.ID, user.Email, user.PasswordDigest, user.Role,
		user.Profile.FullName, user.Profile.Username, user.Profile.AvatarURL,
		user.Profile.Bio, user.Profile.Website, user.Profile.Location,
		user.CreatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, "users_email_key") {
			return apperr.EmailTaken()
		}
		if dberr.IsUniqueViolation(err, "users_username_key") {
			return apperr.UsernameTaken()
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update replaces the stored record with the same ID.
func (directory *PostgresUserDirectory) Update(ctx context.Context, user User) error {
	query := `
		UPDATE users SET
			email = $2, password_digest = $3, role = $4,
			full_name = $5, username = $6, avatar_url = $7,
			bio = $8, website = $9, location = $10
		WHERE id = $1`

	_, err := directory.pool.Exec(ctx, query,
		user.ID, user.Email, user.PasswordDigest, user.Role,
		user.Profile.FullName, user.Profile.Username, user.Profile.AvatarURL,
		user.Profile.Bio, user.Profile.Website, user.Profile.Location,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, "users_username_key") {
			return apperr.UsernameTaken()
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Delete removes the account with the given ID. Absent IDs are not an error.
func (directory *PostgresUserDirectory) Delete(ctx context.Context, id string) error {
	if _, err := directory.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
