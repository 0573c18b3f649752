// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/sec"
)

// Service implements the bearer-token lifecycle use cases.
type Service struct {
	repository Repository
	users      UserDirectory
}

// NewService constructs a new token [Service] with necessary dependencies.
func NewService(repository Repository, users UserDirectory) *Service {
	return &Service{
		repository: repository,
		users:      users,
	}
}

// # Issuance

/*
Issue creates a fresh token for (email, purpose), replacing any prior one.

Description: Draws random 32-character values until one is globally unused
(re-checking storage on every attempt), then atomically swaps it in. A user
therefore always holds at most one live token per purpose.

Parameters:
  - context: context.Context
  - email: string (must belong to an existing user)
  - purpose: Purpose

Returns:
  - string: The opaque token value to hand to the client
  - error: apperr.NotFound if the user does not exist, Internal on exhaustion
*/
func (service *Service) Issue(context context.Context, email string, purpose Purpose) (string, error) {
	if !purpose.Valid() {
		return "", apperr.ValidationError("Unknown token purpose")
	}

	// The token table has no FK-independent existence: a token always belongs
	// to a real user. Resolve first so a bad email fails with NotFound.
	identity, err := service.users.FindIdentity(context, email)
	if err != nil {
		return "", err
	}

	value, err := service.uniqueValue(context)
	if err != nil {
		return "", err
	}

	tok := &Token{
		Email:   identity.Email,
		Purpose: purpose,
		Value:   value,
		Expires: time.Now().Add(purpose.TTL()),
	}

	if err := service.repository.Replace(context, tok); err != nil {
		return "", fmt.Errorf("token_service_issue_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("token_issued",
		slog.String("email", email),
		slog.String("purpose", string(purpose)),
	)

	return value, nil
}

// uniqueValue draws random values until one is unused in storage.
//
// Collisions in a 62^32 space are effectively impossible, but the check is
// cheap and the bounded loop turns a broken random source into a loud error
// instead of silently overwriting someone else's session.
func (service *Service) uniqueValue(context context.Context) (string, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		value, err := sec.RandomString(ValueLength)
		if err != nil {
			return "", fmt.Errorf("token_service_random_failed: %w", err)
		}

		taken, err := service.repository.ValueExists(context, value)
		if err != nil {
			return "", fmt.Errorf("token_service_uniqueness_check_failed: %w", err)
		}
		if !taken {
			return value, nil
		}
	}

	return "", apperr.Internal(fmt.Errorf("token value space exhausted after %d attempts", maxIssueAttempts))
}

// # Validation

/*
Validate resolves an opaque value to its token row and owner identity.

Description: Purpose-specific expiry rules apply. Account tokens slide their
expiry 15 minutes forward on success; PassReset tokens expire hard after 24
hours; Verification tokens never expire. An expired token yields
apperr.Expired — deliberately distinct from the NotFound of an unknown value.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *Token: The live token row
  - *sec.Identity: The owner's identity
  - error: apperr.NotFound, apperr.Expired, or database errors
*/
func (service *Service) Validate(context context.Context, value string) (*Token, *sec.Identity, error) {
	tok, err := service.repository.FindByValue(context, value)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()

	switch tok.Purpose {
	case PurposeAccount:
		if tok.ExpiredAt(now) {
			return nil, nil, apperr.Expired("Session has expired")
		}
		// Sliding window: activity keeps the session alive.
		tok.Expires = now.Add(AccountSessionTTL)
		if err := service.repository.UpdateExpiry(context, tok.Email, tok.Purpose, tok.Expires); err != nil {
			return nil, nil, fmt.Errorf("token_service_slide_failed: %w", err)
		}

	case PurposePassReset:
		if tok.ExpiredAt(now) {
			return nil, nil, apperr.Expired("Password reset token has expired")
		}

	case PurposeVerification:
		// Never enforced: the verification link keeps working.
	}

	identity, err := service.users.FindIdentity(context, tok.Email)
	if err != nil {
		return nil, nil, err
	}

	return tok, identity, nil
}

/*
VerifySession resolves a bearer value as a login session.

Description: Implements the middleware's SessionVerifier contract. Only
Account-purpose tokens authenticate HTTP requests; a PassReset or Verification
value in the Authorization header is rejected as if it did not exist.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *sec.Identity: The authenticated caller
  - error: apperr.NotFound, apperr.Expired, or database errors
*/
func (service *Service) VerifySession(context context.Context, value string) (*sec.Identity, error) {
	tok, identity, err := service.Validate(context, value)
	if err != nil {
		return nil, err
	}

	if tok.Purpose != PurposeAccount {
		return nil, apperr.NotFound("Token")
	}

	return identity, nil
}

// # Maintenance

/*
Refresh slides the caller's Account session forward without a full lookup
by value.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound if no session, apperr.Expired if it lapsed
*/
func (service *Service) Refresh(context context.Context, email string) error {
	tok, err := service.repository.FindByOwner(context, email, PurposeAccount)
	if err != nil {
		return err
	}

	now := time.Now()
	if tok.ExpiredAt(now) {
		return apperr.Expired("Session has expired")
	}

	if err := service.repository.UpdateExpiry(context, email, PurposeAccount, now.Add(AccountSessionTTL)); err != nil {
		return fmt.Errorf("token_service_refresh_failed: %w", err)
	}

	return nil
}

/*
Revoke deletes the (email, purpose) token. Revoking a token that does not
exist succeeds silently.

Parameters:
  - context: context.Context
  - email: string
  - purpose: Purpose

Returns:
  - error: Persistence failures only
*/
func (service *Service) Revoke(context context.Context, email string, purpose Purpose) error {
	if err := service.repository.Delete(context, email, purpose); err != nil {
		return fmt.Errorf("token_service_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("token_revoked",
		slog.String("email", email),
		slog.String("purpose", string(purpose)),
	)

	return nil
}
