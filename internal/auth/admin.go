// Copyright (c) 2026 Postify. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/postify/identity/internal/platform/apperr"
	"github.com/postify/identity/internal/platform/sec"
	"github.com/postify/identity/pkg/pagination"
)

// # Administration

// Every admin operation takes the acting admin's ID explicitly. The service
// never infers the actor from ambient session state, so the self-action
// guards below are checkable in isolation.

// requireAdmin loads the actor and verifies the admin role.
func (service *Service) requireAdmin(ctx context.Context, actorID string) (*User, error) {
	actor, err := service.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if actor == nil || actor.Role != sec.RoleAdmin {
		return nil, apperr.Forbidden("Admin access required")
	}
	return actor, nil
}

/*
ListUsers returns a page of sanitized accounts, oldest first.

Returns:
  - []User: the requested page, password digests stripped
  - pagination.Meta: page metadata over the full directory size
  - error: FORBIDDEN if the actor is not an admin
*/
func (service *Service) ListUsers(ctx context.Context, actorID string, params pagination.Params) ([]User, pagination.Meta, error) {
	if _, err := service.requireAdmin(ctx, actorID); err != nil {
		return nil, pagination.Meta{}, err
	}

	users, err := service.users.List(ctx)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list users: %w", err)
	}

	total := int64(len(users))
	start := params.Offset()
	if start > len(users) {
		start = len(users)
	}
	end := start + params.Limit()
	if end > len(users) {
		end = len(users)
	}

	page := make([]User, 0, end-start)
	for _, user := range users[start:end] {
		page = append(page, user.Sanitized())
	}

	return page, pagination.NewMeta(params, total), nil
}

/*
UpdateUserRole changes the role of the target account.

# Parameters
  - actorID: the acting admin (explicit, never ambient)
  - targetID: the account being changed
  - role: the new role

Guards, in order: FORBIDDEN (actor not admin), INVALID_ROLE, SELF_DEMOTION
(an admin may not remove their own admin role), USER_NOT_FOUND.
*/
func (service *Service) UpdateUserRole(ctx context.Context, actorID, targetID string, role sec.UserRole) (*User, error) {
	if _, err := service.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if !sec.ValidRole(string(role)) {
		return nil, apperr.InvalidRole(string(role))
	}

	if actorID == targetID && role != sec.RoleAdmin {
		return nil, apperr.SelfDemotion()
	}

	target, err := service.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if target == nil {
		return nil, apperr.UserNotFound()
	}

	target.Role = role
	if err := service.users.Update(ctx, *target); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user_role_updated",
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
		slog.String("role", string(role)),
	)

	sanitized := target.Sanitized()
	return &sanitized, nil
}

/*
DeleteUser removes the target account from the directory.

Guards, in order: FORBIDDEN (actor not admin), SELF_DELETION (an admin may
not delete their own account), USER_NOT_FOUND.
*/
func (service *Service) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if _, err := service.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	if actorID == targetID {
		return apperr.SelfDeletion()
	}

	target, err := service.users.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if target == nil {
		return apperr.UserNotFound()
	}

	if err := service.users.Delete(ctx, targetID); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "user_deleted",
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
	)
	return nil
}

// # Dashboard

// DashboardStats summarizes the directory for the admin dashboard.
type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalAdmins    int64 `json:"total_admins"`
	TotalModerated int64 `json:"total_moderators"`
	TotalRegulars  int64 `json:"total_regular_users"`
	TotalPosts     int64 `json:"total_posts"`

	// RecentUsers are the five newest accounts, newest first, sanitized.
	RecentUsers []User `json:"recent_users"`
}

// GetDashboardStats computes directory and content totals.
func (service *Service) GetDashboardStats(ctx context.Context, actorID string) (*DashboardStats, error) {
	if _, err := service.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	users, err := service.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	stats := &DashboardStats{TotalUsers: int64(len(users))}
	for _, user := range users {
		switch user.Role {
		case sec.RoleAdmin:
			stats.TotalAdmins++
		case sec.RoleModerator:
			stats.TotalModerated++
		case sec.RoleUser:
			stats.TotalRegulars++
		}
	}

	// Five newest, newest first. The directory lists oldest first.
	count := 5
	if count > len(users) {
		count = len(users)
	}
	stats.RecentUsers = make([]User, 0, count)
	for i := len(users) - 1; i >= len(users)-count; i-- {
		stats.RecentUsers = append(stats.RecentUsers, users[i].Sanitized())
	}

	if service.posts != nil {
		totalPosts, err := service.posts.CountPosts(ctx)
		if err != nil {
			return nil, fmt.Errorf("dashboard stats: %w", err)
		}
		stats.TotalPosts = totalPosts
	}

	return stats, nil
}
