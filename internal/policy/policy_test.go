// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neverbeen/api/internal/policy"
	"github.com/neverbeen/api/internal/platform/sec"
)

func identity(username string, role sec.Role) *sec.Identity {
	return &sec.Identity{
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
	}
}

/*
TestCanDeleteUser covers self-deletion and admin deletion boundaries.
*/
func TestCanDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		caller     *sec.Identity
		target     string
		targetRole sec.Role
		allowed    bool
	}{
		{"self_plain_user", identity("alice", sec.RoleUser), "alice", sec.RoleUser, true},
		{"self_admin", identity("root", sec.RoleAdmin), "root", sec.RoleAdmin, true},
		{"admin_deletes_user", identity("root", sec.RoleAdmin), "alice", sec.RoleUser, true},
		{"admin_deletes_moderator", identity("root", sec.RoleAdmin), "mod", sec.RoleModerator, true},
		{"admin_deletes_other_admin", identity("root", sec.RoleAdmin), "root2", sec.RoleAdmin, false},
		{"moderator_deletes_user", identity("mod", sec.RoleModerator), "alice", sec.RoleUser, false},
		{"user_deletes_other", identity("alice", sec.RoleUser), "bob", sec.RoleUser, false},
		{"anonymous", nil, "alice", sec.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, policy.CanDeleteUser(tt.caller, tt.target, tt.targetRole))
		})
	}
}

/*
TestCanSetRole ensures admins cannot be created or demoted through the API.
*/
func TestCanSetRole(t *testing.T) {
	tests := []struct {
		name       string
		caller     *sec.Identity
		targetRole sec.Role
		newRole    sec.Role
		allowed    bool
	}{
		{"admin_promotes_to_moderator", identity("root", sec.RoleAdmin), sec.RoleUser, sec.RoleModerator, true},
		{"admin_demotes_moderator", identity("root", sec.RoleAdmin), sec.RoleModerator, sec.RoleUser, true},
		{"admin_creates_admin", identity("root", sec.RoleAdmin), sec.RoleUser, sec.RoleAdmin, false},
		{"admin_demotes_admin", identity("root", sec.RoleAdmin), sec.RoleAdmin, sec.RoleUser, false},
		{"unknown_role", identity("root", sec.RoleAdmin), sec.RoleUser, sec.Role("Owner"), false},
		{"moderator_promotes", identity("mod", sec.RoleModerator), sec.RoleUser, sec.RoleModerator, false},
		{"user_promotes", identity("alice", sec.RoleUser), sec.RoleUser, sec.RoleModerator, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, policy.CanSetRole(tt.caller, tt.targetRole, tt.newRole))
		})
	}
}

/*
TestCanMutatePlace verifies the owner-or-staff rule for place edits/deletes.
*/
func TestCanMutatePlace(t *testing.T) {
	tests := []struct {
		name    string
		caller  *sec.Identity
		poster  string
		allowed bool
	}{
		{"owner", identity("alice", sec.RoleUser), "alice", true},
		{"moderator", identity("mod", sec.RoleModerator), "alice", true},
		{"admin", identity("root", sec.RoleAdmin), "alice", true},
		{"stranger", identity("bob", sec.RoleUser), "alice", false},
		{"anonymous", nil, "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, policy.CanMutatePlace(tt.caller, tt.poster))
		})
	}
}

/*
TestRatingPolicies checks the asymmetry between editing and deleting ratings:
staff may delete (Admin) but never edit another user's opinion.
*/
func TestRatingPolicies(t *testing.T) {
	owner := identity("alice", sec.RoleUser)
	admin := identity("root", sec.RoleAdmin)
	moderator := identity("mod", sec.RoleModerator)
	stranger := identity("bob", sec.RoleUser)

	// Edit: strictly the author
	assert.True(t, policy.CanEditRating(owner, "alice"))
	assert.False(t, policy.CanEditRating(admin, "alice"))
	assert.False(t, policy.CanEditRating(moderator, "alice"))
	assert.False(t, policy.CanEditRating(stranger, "alice"))

	// Delete: author or admin, not moderator
	assert.True(t, policy.CanDeleteRating(owner, "alice"))
	assert.True(t, policy.CanDeleteRating(admin, "alice"))
	assert.False(t, policy.CanDeleteRating(moderator, "alice"))
	assert.False(t, policy.CanDeleteRating(stranger, "alice"))
}

/*
TestThumbnailPolicies checks upload, verification, and deletion rules.
*/
func TestThumbnailPolicies(t *testing.T) {
	admin := identity("root", sec.RoleAdmin)
	moderator := identity("mod", sec.RoleModerator)
	placeOwner := identity("alice", sec.RoleUser)
	stranger := identity("bob", sec.RoleUser)

	// Upload: place owner or admin
	assert.True(t, policy.CanUploadThumbnail(placeOwner, "alice"))
	assert.True(t, policy.CanUploadThumbnail(admin, "alice"))
	assert.False(t, policy.CanUploadThumbnail(moderator, "alice"))
	assert.False(t, policy.CanUploadThumbnail(stranger, "alice"))

	// Verify: staff only
	assert.True(t, policy.CanVerifyThumbnail(admin))
	assert.True(t, policy.CanVerifyThumbnail(moderator))
	assert.False(t, policy.CanVerifyThumbnail(stranger))
	assert.False(t, policy.CanVerifyThumbnail(nil))

	// Delete: place poster or staff; the uploader alone has no claim
	assert.True(t, policy.CanDeleteThumbnail(placeOwner, "alice"))
	assert.True(t, policy.CanDeleteThumbnail(moderator, "alice"))
	assert.True(t, policy.CanDeleteThumbnail(admin, "alice"))
	assert.False(t, policy.CanDeleteThumbnail(stranger, "alice"))
	assert.False(t, policy.CanDeleteThumbnail(nil, "alice"))
}

/*
TestVisibilityAndListing covers the staff-only and admin-only gates.
*/
func TestVisibilityAndListing(t *testing.T) {
	assert.True(t, policy.CanToggleVisibility(identity("mod", sec.RoleModerator)))
	assert.True(t, policy.CanToggleVisibility(identity("root", sec.RoleAdmin)))
	assert.False(t, policy.CanToggleVisibility(identity("alice", sec.RoleUser)))
	assert.False(t, policy.CanToggleVisibility(nil))

	assert.True(t, policy.CanListUsers(identity("root", sec.RoleAdmin)))
	assert.False(t, policy.CanListUsers(identity("mod", sec.RoleModerator)))
	assert.False(t, policy.CanListUsers(nil))
}

/*
TestCanChangeUsername verifies renaming: owners always, staff only over plain
User accounts.
*/
func TestCanChangeUsername(t *testing.T) {
	tests := []struct {
		name       string
		caller     *sec.Identity
		target     string
		targetRole sec.Role
		allowed    bool
	}{
		{"self_plain_user", identity("alice", sec.RoleUser), "alice", sec.RoleUser, true},
		{"self_admin", identity("root", sec.RoleAdmin), "root", sec.RoleAdmin, true},
		{"admin_renames_user", identity("root", sec.RoleAdmin), "alice", sec.RoleUser, true},
		{"moderator_renames_user", identity("mod", sec.RoleModerator), "alice", sec.RoleUser, true},
		{"admin_renames_moderator", identity("root", sec.RoleAdmin), "mod", sec.RoleModerator, false},
		{"admin_renames_other_admin", identity("root", sec.RoleAdmin), "root2", sec.RoleAdmin, false},
		{"moderator_renames_moderator", identity("mod", sec.RoleModerator), "mod2", sec.RoleModerator, false},
		{"user_renames_other", identity("bob", sec.RoleUser), "alice", sec.RoleUser, false},
		{"anonymous", nil, "alice", sec.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, policy.CanChangeUsername(tt.caller, tt.target, tt.targetRole))
		})
	}
}
