// Copyright (c) 2026 Postify. All rights reserved.

package auth_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postify/identity/internal/auth"
	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/pkg/pagination"
)

// adminFixture is a fixture with the seed admin and one standard user.
func adminFixture(t *testing.T) (*fixture, *auth.User) {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.service.EnsureAdmin(context.Background()))
	user := f.register(t, "reader@example.com", "avid_reader")
	return f, user
}

/*
TestListUsers covers pagination over the directory and the admin guard.
Every returned record must be sanitized.
*/
func TestListUsers(t *testing.T) {
	f, user := adminFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.register(t, fmt.Sprintf("extra%d@example.com", i), fmt.Sprintf("extra_%d", i))
	}

	// 7 accounts total: admin + reader + 5 extras.
	firstPage, meta, err := f.service.ListUsers(ctx, "admin_001", pagination.Params{Page: 1, PerPage: 3})
	require.NoError(t, err)
	assert.Len(t, firstPage, 3)
	assert.Equal(t, int64(7), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, "admin_001", firstPage[0].ID) // oldest first

	for _, listed := range firstPage {
		assert.Empty(t, listed.PasswordDigest)
	}

	lastPage, _, err := f.service.ListUsers(ctx, "admin_001", pagination.Params{Page: 3, PerPage: 3})
	require.NoError(t, err)
	assert.Len(t, lastPage, 1)

	beyond, _, err := f.service.ListUsers(ctx, "admin_001", pagination.Params{Page: 9, PerPage: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	// Non-admin actors are rejected.
	_, _, err = f.service.ListUsers(ctx, user.ID, pagination.Params{Page: 1, PerPage: 3})
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

/*
TestUpdateUserRole walks the guard order: actor role, role validity,
self-demotion, target existence.
*/
func TestUpdateUserRole(t *testing.T) {
	f, user := adminFixture(t)
	ctx := context.Background()

	t.Run("promotes a user", func(t *testing.T) {
		updated, err := f.service.UpdateUserRole(ctx, "admin_001", user.ID, sec.RoleModerator)
		require.NoError(t, err)
		assert.Equal(t, sec.RoleModerator, updated.Role)
		assert.Empty(t, updated.PasswordDigest)
	})

	t.Run("non-admin actor", func(t *testing.T) {
		_, err := f.service.UpdateUserRole(ctx, user.ID, "admin_001", sec.RoleUser)
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.service.UpdateUserRole(ctx, "admin_001", user.ID, sec.UserRole("superuser"))
		assert.True(t, apperr.Is(err, apperr.CodeInvalidRole))
	})

	t.Run("self-demotion blocked", func(t *testing.T) {
		_, err := f.service.UpdateUserRole(ctx, "admin_001", "admin_001", sec.RoleUser)
		assert.True(t, apperr.Is(err, apperr.CodeSelfDemotion))
	})

	t.Run("self re-assert admin allowed", func(t *testing.T) {
		_, err := f.service.UpdateUserRole(ctx, "admin_001", "admin_001", sec.RoleAdmin)
		assert.NoError(t, err)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := f.service.UpdateUserRole(ctx, "admin_001", "ghost", sec.RoleUser)
		assert.True(t, apperr.Is(err, apperr.CodeUserNotFound))
	})
}

/*
TestDeleteUser walks the guard order: actor role, self-deletion, target
existence, then deletion.
*/
func TestDeleteUser(t *testing.T) {
	f, user := adminFixture(t)
	ctx := context.Background()

	assert.True(t, apperr.Is(f.service.DeleteUser(ctx, user.ID, "admin_001"), apperr.CodeForbidden))
	assert.True(t, apperr.Is(f.service.DeleteUser(ctx, "admin_001", "admin_001"), apperr.CodeSelfDeletion))
	assert.True(t, apperr.Is(f.service.DeleteUser(ctx, "admin_001", "ghost"), apperr.CodeUserNotFound))

	require.NoError(t, f.service.DeleteUser(ctx, "admin_001", user.ID))
	_, err := f.service.GetProfile(ctx, user.ID)
	assert.True(t, apperr.Is(err, apperr.CodeUserNotFound))
}

// staticCounter is a fixed-value PostCounter for dashboard tests.
type staticCounter int64

func (counter staticCounter) CountPosts(context.Context) (int64, error) {
	return int64(counter), nil
}

/*
TestGetDashboardStats verifies totals, role counts, the recent-five window
(newest first), and the wired post counter.
*/
func TestGetDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.EnsureAdmin(ctx))

	withCounter := auth.NewService(
		auth.NewKVUserDirectory(f.store, discardLogger()),
		auth.NewKVSessionStore(f.store, discardLogger()),
		nil, // tokens unused by stats
		sec.LegacyHasher{},
		f.events,
		discardLogger(),
		auth.WithPostCounter(staticCounter(12)),
	)

	for i := 0; i < 6; i++ {
		f.register(t, fmt.Sprintf("writer%d@example.com", i), fmt.Sprintf("writer_%d", i))
	}
	_, err := f.service.UpdateUserRole(ctx, "admin_001", mustFind(t, f, "writer_0").ID, sec.RoleModerator)
	require.NoError(t, err)

	stats, err := withCounter.GetDashboardStats(ctx, "admin_001")
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalAdmins)
	assert.Equal(t, int64(1), stats.TotalModerated)
	assert.Equal(t, int64(5), stats.TotalRegulars)
	assert.Equal(t, int64(12), stats.TotalPosts)

	require.Len(t, stats.RecentUsers, 5)
	assert.Equal(t, "writer_5", stats.RecentUsers[0].Profile.Username) // newest first
	assert.Equal(t, "writer_1", stats.RecentUsers[4].Profile.Username)
	for _, recent := range stats.RecentUsers {
		assert.Empty(t, recent.PasswordDigest)
	}

	// Guarded like every other admin operation.
	_, err = withCounter.GetDashboardStats(ctx, mustFind(t, f, "writer_1").ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

// mustFind looks a user up by handle through the profile surface.
func mustFind(t *testing.T, f *fixture, username string) *auth.User {
	t.Helper()
	users, _, err := f.service.ListUsers(context.Background(), "admin_001", pagination.Params{Page: 1, PerPage: 100})
	require.NoError(t, err)
	for i := range users {
		if users[i].Profile.Username == username {
			return &users[i]
		}
	}
	t.Fatalf("user %q not found", username)
	return nil
}
