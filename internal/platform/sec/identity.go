// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package sec

// Identity is the resolved caller attached to a request after its bearer
// token has been validated against storage.
//
// # Why no claims struct?
//
// NeverBeen bearer tokens are opaque random strings — possession of the
// string plus a live matching row is the entire proof. The row resolves to
// this Identity on every authenticated request.
type Identity struct {
	// Email is the primary identity key.
	Email string `json:"email"`
	// Username is the public handle places and ratings reference.
	Username string `json:"username"`
	// Role is the caller's access level.
	Role Role `json:"access_level"`
}

// IsStaff reports whether the caller holds a moderation role.
func (i *Identity) IsStaff() bool {
	return i.Role.IsStaff()
}
