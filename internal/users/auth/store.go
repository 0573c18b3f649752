// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package auth

import (
	"context"

	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/users/token"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// The PostgreSQL implementation also satisfies [token.UserDirectory] via
// FindIdentity, so the token authority can resolve owners without importing
// this package's entities.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindIdentity returns the identity projection of the account.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *sec.Identity: Email, username, and role
		  - error: apperr.NotFound or database errors
	*/
	FindIdentity(context context.Context, email string) (*sec.Identity, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		SetVerified flips the account's email-verification flag.

		Parameters:
		  - context: context.Context
		  - email: string
		  - verified: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetVerified(context context.Context, email string, verified bool) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - email: string
		  - passwordHash: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdatePassword(context context.Context, email string, passwordHash string) error

	/*
		Delete removes the account row. Places, ratings, thumbnails, and
		tokens follow via FK cascade.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, email string) error
}

// # Token Authority Contract

// TokenAuthority is the subset of the token service the auth flows use.
type TokenAuthority interface {
	Issue(context context.Context, email string, purpose token.Purpose) (string, error)
	Validate(context context.Context, value string) (*token.Token, *sec.Identity, error)
	Refresh(context context.Context, email string) error
	Revoke(context context.Context, email string, purpose token.Purpose) error
}
