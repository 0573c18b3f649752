// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package token implements the bearer-token authority.

All tokens are opaque 32-character random alphanumeric strings persisted in
PostgreSQL. Possession of the string plus a live matching row is the entire
proof of identity — nothing is encoded in the value itself, so any token can
be revoked instantly by deleting its row.

Purposes:

  - Account: the login session. Expiry slides forward 15 minutes on every
    successful validation.
  - PassReset: single-use password reset grant, fixed 24 hour window.
  - Verification: email-ownership proof. An expiry is stored for bookkeeping
    but deliberately never enforced.

A user holds at most one live token per purpose: issuing a new one atomically
replaces the previous one.
*/
package token

import (
	"context"
	"time"

	"github.com/neverbeen/api/internal/platform/sec"
)

// # Token Purposes

// Purpose classifies what a bearer token grants.
type Purpose string

const (
	// PurposeAccount is the login session token.
	PurposeAccount Purpose = "Account"

	// PurposePassReset is the single-use password reset grant.
	PurposePassReset Purpose = "PassReset"

	// PurposeVerification is the email-ownership proof sent at registration.
	PurposeVerification Purpose = "Verification"
)

// Valid reports whether the purpose is one of the closed set.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeAccount, PurposePassReset, PurposeVerification:
		return true
	default:
		return false
	}
}

// TTL returns the lifetime stamped on a freshly issued token of this purpose.
//
// Verification tokens receive a TTL for bookkeeping, but Validate never
// enforces it: the email link must keep working however late it is clicked.
func (p Purpose) TTL() time.Duration {
	switch p {
	case PurposeAccount:
		return AccountSessionTTL
	case PurposePassReset:
		return PassResetTTL
	case PurposeVerification:
		return VerificationTTL
	default:
		return 0
	}
}

// # Lifetime Constraints

const (
	// AccountSessionTTL is the sliding window of a login session. Every
	// successful validation pushes the expiry this far into the future.
	AccountSessionTTL = 15 * time.Minute

	// PassResetTTL is the fixed validity window of a password reset token.
	PassResetTTL = 24 * time.Hour

	// VerificationTTL is stored on verification tokens but not enforced.
	VerificationTTL = 24 * time.Hour

	// ValueLength is the character length of every generated token value.
	ValueLength = 32

	// maxIssueAttempts bounds the redraw loop on value collisions. With a
	// 62^32 value space this is effectively unreachable; the bound exists so
	// a broken random source fails loudly instead of spinning forever.
	maxIssueAttempts = 64
)

// # Domain Entities

// Token is one row of the token table: a live grant for (Email, Purpose).
type Token struct {
	Email   string    `json:"email"`
	Purpose Purpose   `json:"type"`
	Value   string    `json:"-"` // Never serialized except through explicit issue responses.
	Expires time.Time `json:"expires"`
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t *Token) ExpiredAt(now time.Time) bool {
	return t.Expires.Before(now)
}

// # Collaborator Contracts

// UserDirectory resolves token owners to their identity.
//
// Defined here (consumer side) so the token authority does not import the
// auth package that implements it.
type UserDirectory interface {
	/*
		FindIdentity returns the identity of the user with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *sec.Identity: Email, username, and role of the account
		  - error: apperr.NotFound or database errors
	*/
	FindIdentity(context context.Context, email string) (*sec.Identity, error)
}
