// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package token

import (
	"context"
	"time"
)

// # Token Data Access

// Repository defines the data access contract for bearer tokens.
type Repository interface {

	/*
		FindByValue returns the token row holding the given opaque value.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - *Token: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByValue(context context.Context, value string) (*Token, error)

	/*
		FindByOwner returns the live token for an (email, purpose) pair.

		Parameters:
		  - context: context.Context
		  - email: string
		  - purpose: Purpose

		Returns:
		  - *Token: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByOwner(context context.Context, email string, purpose Purpose) (*Token, error)

	/*
		ValueExists reports whether any live token already carries the value.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - bool: true if the value is taken
		  - error: Database errors
	*/
	ValueExists(context context.Context, value string) (bool, error)

	/*
		Replace atomically deletes any prior (email, purpose) token and
		inserts the new one, in a single transaction.

		Parameters:
		  - context: context.Context
		  - tok: *Token

		Returns:
		  - error: Persistence failures
	*/
	Replace(context context.Context, tok *Token) error

	/*
		UpdateExpiry rewrites the expiry of an (email, purpose) token.

		Parameters:
		  - context: context.Context
		  - email: string
		  - purpose: Purpose
		  - expires: time.Time

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateExpiry(context context.Context, email string, purpose Purpose, expires time.Time) error

	/*
		Delete removes the (email, purpose) token. Deleting a token that
		does not exist is not an error (revocation is idempotent).

		Parameters:
		  - context: context.Context
		  - email: string
		  - purpose: Purpose

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, email string, purpose Purpose) error
}
