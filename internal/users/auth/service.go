// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/mail"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/internal/users/token"
)

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	userRepository UserRepository
	tokens         TokenAuthority
	mailer         mail.Sender
	publicBaseURL  string
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokens TokenAuthority, mailer mail.Sender, publicBaseURL string) *Service {
	return &Service{
		userRepository: userRepo,
		tokens:         tokens,
		mailer:         mailer,
		publicBaseURL:  publicBaseURL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrollment is all-or-nothing. The account row, the verification
token, and the verification email either all succeed or the row is removed
again — a user that exists but can never receive its verification link would
be permanently locked out.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (email checked before username), Upstream on mail failure
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	input.Username = validate.NormalizeNFC(input.Username)

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Email:          input.Email,
		Username:       input.Username,
		PasswordHash:   hashedPassword,
		Role:           sec.RoleUser,
		Verified:       false,
		AccountCreated: time.Now(),
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Issue the verification token and deliver the link. Failure of either
	// step rolls the enrollment back entirely.
	verificationValue, err := service.tokens.Issue(context, user.Email, token.PurposeVerification)
	if err != nil {
		_ = service.userRepository.Delete(context, user.Email)
		return nil, fmt.Errorf("auth_service_verification_issue_failed: %w", err)
	}

	if err := service.sendVerificationMail(user, verificationValue); err != nil {
		_ = service.userRepository.Delete(context, user.Email)
		return nil, apperr.Upstream("Could not deliver the verification email", err)
	}

	ctxutil.GetLogger(context).Info("user_registered",
		slog.String("email", user.Email),
		slog.String("username", user.Username),
	)

	return user, nil
}

// sendVerificationMail delivers the account-activation link.
func (service *Service) sendVerificationMail(user *User, tokenValue string) error {
	link := fmt.Sprintf("%s/verify/%s", service.publicBaseURL, tokenValue)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Welcome to NeverBeen! Click the link below to verify your account:</p>
<p><a href="%s">%s</a></p>
<p>If you did not create this account, you can ignore this email.</p>`,
		user.Username, link, link,
	)

	return service.mailer.Send(user.Email, "Verify your NeverBeen account", body)
}

// # Authentication Flow

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *User
}

/*
Login validates user credentials and issues a session token.

Description: Unknown emails and wrong passwords return byte-identical
Unauthorized responses to prevent account enumeration. The verification state
is only surfaced AFTER the password has matched, so a caller who does not own
the account cannot learn that the email belongs to an unverified one.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *LoginSession: Bearer token and profile
  - error: Forbidden, Unauthorized, or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginSession, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Constant-time comparison in bcrypt prevents timing attacks.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.Verified {
		return nil, apperr.Forbidden("Account is not verified")
	}

	// Issuing replaces any previous session: one live login per account.
	accessToken, err := service.tokens.Issue(context, user.Email, token.PurposeAccount)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_issue_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("user_logged_in",
		slog.String("email", user.Email),
	)

	return &LoginSession{
		AccessToken: accessToken,
		ExpiresIn:   token.AccountSessionTTL,
		User:        user,
	}, nil
}

// # Verification Flow

/*
VerifyAccount consumes a verification token and activates the account.

Description: The token is single-use: it is deleted on success, so a second
click on the same link yields NotFound.

Parameters:
  - context: context.Context
  - tokenValue: string

Returns:
  - error: apperr.NotFound (unknown value or wrong purpose) or storage errors
*/
func (service *Service) VerifyAccount(context context.Context, tokenValue string) error {
	tok, identity, err := service.tokens.Validate(context, tokenValue)
	if err != nil {
		return err
	}

	// A session or reset value is useless here; treat it as nonexistent.
	if tok.Purpose != token.PurposeVerification {
		return apperr.NotFound("Token")
	}

	if err := service.userRepository.SetVerified(context, identity.Email, true); err != nil {
		return fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	if err := service.tokens.Revoke(context, identity.Email, token.PurposeVerification); err != nil {
		return fmt.Errorf("auth_service_verify_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("user_verified",
		slog.String("email", identity.Email),
	)

	return nil
}

// # Credential Recovery Flow

/*
RequestPasswordReset issues a PassReset token and emails the reset link.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound for unknown emails, Upstream on mail failure
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return err
	}

	resetValue, err := service.tokens.Issue(context, user.Email, token.PurposePassReset)
	if err != nil {
		return fmt.Errorf("auth_service_reset_issue_failed: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", service.publicBaseURL, resetValue)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>A password reset was requested for your account. The link below is valid for 24 hours:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		user.Username, link, link,
	)

	if err := service.mailer.Send(user.Email, "Reset your NeverBeen password", body); err != nil {
		// The undeliverable token is useless; remove it again.
		_ = service.tokens.Revoke(context, user.Email, token.PurposePassReset)
		return apperr.Upstream("Could not deliver the password reset email", err)
	}

	ctxutil.GetLogger(context).Info("password_reset_requested",
		slog.String("email", user.Email),
	)

	return nil
}

/*
ResetPassword consumes a PassReset token and rewrites the password hash.

Description: Both the reset token AND any live session are revoked: whoever
held the old password's session must log in again with the new one.

Parameters:
  - context: context.Context
  - tokenValue: string
  - newPassword: string

Returns:
  - error: apperr.NotFound, apperr.Expired, or storage errors
*/
func (service *Service) ResetPassword(context context.Context, tokenValue, newPassword string) error {
	tok, identity, err := service.tokens.Validate(context, tokenValue)
	if err != nil {
		return err
	}

	if tok.Purpose != token.PurposePassReset {
		return apperr.NotFound("Token")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, identity.Email, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	if err := service.tokens.Revoke(context, identity.Email, token.PurposePassReset); err != nil {
		return fmt.Errorf("auth_service_reset_revoke_failed: %w", err)
	}
	if err := service.tokens.Revoke(context, identity.Email, token.PurposeAccount); err != nil {
		return fmt.Errorf("auth_service_reset_session_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("password_reset_completed",
		slog.String("email", identity.Email),
	)

	return nil
}

// # Session Maintenance

/*
RefreshSession slides the caller's session window forward.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound, apperr.Expired, or storage errors
*/
func (service *Service) RefreshSession(context context.Context, email string) error {
	return service.tokens.Refresh(context, email)
}

/*
Logout revokes the caller's session token. Idempotent.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Persistence failures only
*/
func (service *Service) Logout(context context.Context, email string) error {
	return service.tokens.Revoke(context, email, token.PurposeAccount)
}
