// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package policy centralizes every authorization decision in the application.

Predicates are pure functions over the caller's [sec.Identity] and the
targeted resource's ownership facts. Services call these before mutating
anything; a false answer always maps to apperr.Forbidden, never to NotFound,
so "you may not" and "it does not exist" stay distinct signals.
*/
package policy

import "github.com/neverbeen/api/internal/platform/sec"

// # User Administration

// CanListUsers allows only administrators to enumerate accounts.
func CanListUsers(caller *sec.Identity) bool {
	return caller != nil && caller.Role == sec.RoleAdmin
}

// CanDeleteUser allows self-deletion for everyone, and administrator deletion
// of any non-admin account. Admin accounts can only be removed by themselves.
func CanDeleteUser(caller *sec.Identity, targetUsername string, targetRole sec.Role) bool {
	if caller == nil {
		return false
	}
	if caller.Username == targetUsername {
		return true
	}
	return caller.Role == sec.RoleAdmin && targetRole != sec.RoleAdmin
}

// CanSetRole allows administrators to move accounts between the non-admin
// roles. Admins can neither be created nor demoted through the API.
func CanSetRole(caller *sec.Identity, targetRole, newRole sec.Role) bool {
	if caller == nil || caller.Role != sec.RoleAdmin {
		return false
	}
	if targetRole == sec.RoleAdmin || newRole == sec.RoleAdmin {
		return false
	}
	return newRole.Valid()
}

// CanChangeUsername allows users to rename themselves, and staff to rename
// plain User accounts only. Staff handles are never rewritten by someone else.
func CanChangeUsername(caller *sec.Identity, targetUsername string, targetRole sec.Role) bool {
	if caller == nil {
		return false
	}
	if caller.Username == targetUsername {
		return true
	}
	return caller.Role.IsStaff() && targetRole == sec.RoleUser
}

// # Place Moderation

// CanMutatePlace allows the submitting user and staff to edit or delete a place.
func CanMutatePlace(caller *sec.Identity, posterID string) bool {
	if caller == nil {
		return false
	}
	return caller.Username == posterID || caller.Role.IsStaff()
}

// CanToggleVisibility allows staff to verify or unverify a place, in both directions.
func CanToggleVisibility(caller *sec.Identity) bool {
	return caller != nil && caller.Role.IsStaff()
}

// # Rating Moderation

// CanEditRating allows only the rating's author to edit it. Staff cannot
// rewrite another user's opinion.
func CanEditRating(caller *sec.Identity, ratingOwner string) bool {
	return caller != nil && caller.Username == ratingOwner
}

// CanDeleteRating allows the author and administrators to remove a rating.
func CanDeleteRating(caller *sec.Identity, ratingOwner string) bool {
	if caller == nil {
		return false
	}
	return caller.Username == ratingOwner || caller.Role == sec.RoleAdmin
}

// # Thumbnail Moderation

// CanUploadThumbnail allows the place owner and administrators to attach images.
func CanUploadThumbnail(caller *sec.Identity, placeOwner string) bool {
	if caller == nil {
		return false
	}
	return caller.Username == placeOwner || caller.Role == sec.RoleAdmin
}

// CanVerifyThumbnail allows staff to flip an image's verified flag.
func CanVerifyThumbnail(caller *sec.Identity) bool {
	return caller != nil && caller.Role.IsStaff()
}

// CanDeleteThumbnail allows staff and the poster of the image's place to
// remove it. The poster curates their own place's gallery even when someone
// else (an admin) attached the image.
func CanDeleteThumbnail(caller *sec.Identity, placePoster string) bool {
	if caller == nil {
		return false
	}
	return caller.Username == placePoster || caller.Role.IsStaff()
}
