// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package sec

// # Access Levels

// Role represents the authorization level granted to an account.
//
// The set is closed: policy code switches over it exhaustively so adding a
// role is a compile-time-visible change site.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "Admin"

	// Can moderate submitted places and thumbnails
	RoleModerator Role = "Moderator"

	// Default role for standard registered users
	RoleUser Role = "User"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role carries moderation privileges.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleModerator:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
