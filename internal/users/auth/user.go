// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package auth implements the user identity and access management layer.

It defines the core User entity and the registration, login, verification,
and credential-recovery flows. Sessions are opaque bearer tokens issued by
the token authority and stored in PostgreSQL.

# Architecture

This layer is the "Truth" of the system. The User entity defined here has no
external dependencies and encapsulates all business rules related to identity.
*/
package auth

import (
	"time"

	"github.com/neverbeen/api/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the NeverBeen platform.
//
// Email is the primary identity key; Username is the public handle that
// places and ratings reference.
type User struct {
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // Explicitly omitted from JSON for security.
	Role           sec.Role  `json:"access_level"`
	Verified       bool      `json:"verified"`
	AccountCreated time.Time `json:"account_created"`
}

// Identity projects the user onto the request-scoped caller representation.
func (u *User) Identity() *sec.Identity {
	return &sec.Identity{
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}

// PublicView is the representation of a user visible to anyone.
//
// Email stays private: profiles are addressed by username and rating/place
// attribution only ever shows the handle.
type PublicView struct {
	Username       string    `json:"username"`
	Role           sec.Role  `json:"access_level"`
	AccountCreated time.Time `json:"account_created"`
}

// Public returns the user's public profile view.
func (u *User) Public() PublicView {
	return PublicView{
		Username:       u.Username,
		Role:           u.Role,
		AccountCreated: u.AccountCreated,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewPassword = "new_password"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldMessage     = "message"
	FieldUser        = "user"
)

// # Validation Constraints

const (
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 8

	// MinUsernameLen keeps handles readable and non-trivially squattable.
	MinUsernameLen = 3
)
