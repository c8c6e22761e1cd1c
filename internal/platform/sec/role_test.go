// Copyright (c) 2026 Postify. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postify/identity/internal/platform/sec"
)

func TestValidRole(t *testing.T) {
	assert.True(t, sec.ValidRole("admin"))
	assert.True(t, sec.ValidRole("moderator"))
	assert.True(t, sec.ValidRole("user"))

	assert.False(t, sec.ValidRole(""))
	assert.False(t, sec.ValidRole("Admin"))
	assert.False(t, sec.ValidRole("superuser"))
}

/*
TestAtLeast walks the role hierarchy: admin > moderator > user, with unknown
roles below everything.
*/
func TestAtLeast(t *testing.T) {
	testCases := []struct {
		name     string
		role     sec.UserRole
		target   sec.UserRole
		expected bool
	}{
		{name: "admin meets admin", role: sec.RoleAdmin, target: sec.RoleAdmin, expected: true},
		{name: "admin exceeds moderator", role: sec.RoleAdmin, target: sec.RoleModerator, expected: true},
		{name: "moderator below admin", role: sec.RoleModerator, target: sec.RoleAdmin, expected: false},
		{name: "moderator exceeds user", role: sec.RoleModerator, target: sec.RoleUser, expected: true},
		{name: "user below moderator", role: sec.RoleUser, target: sec.RoleModerator, expected: false},
		{name: "unknown role below user", role: sec.UserRole("ghost"), target: sec.RoleUser, expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.role.AtLeast(testCase.target))
		})
	}
}
