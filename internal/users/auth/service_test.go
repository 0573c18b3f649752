// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/users/auth"
	"github.com/neverbeen/api/internal/users/token"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	byEmail map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{byEmail: make(map[string]*auth.User)}
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if user, ok := f.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.byEmail {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindIdentity(ctx context.Context, email string) (*sec.Identity, error) {
	user, err := f.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepository) SetVerified(_ context.Context, email string, verified bool) error {
	user, ok := f.byEmail[email]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Verified = verified
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, email string, passwordHash string) error {
	user, ok := f.byEmail[email]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepository) Delete(_ context.Context, email string) error {
	if _, ok := f.byEmail[email]; !ok {
		return apperr.NotFound("User")
	}
	delete(f.byEmail, email)
	return nil
}

type fakeTokenRepository struct {
	rows map[string]*token.Token
}

func tokenKey(email string, purpose token.Purpose) string {
	return email + "|" + string(purpose)
}

func (f *fakeTokenRepository) FindByValue(_ context.Context, value string) (*token.Token, error) {
	for _, tok := range f.rows {
		if tok.Value == value {
			copied := *tok
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Token")
}

func (f *fakeTokenRepository) FindByOwner(_ context.Context, email string, purpose token.Purpose) (*token.Token, error) {
	if tok, ok := f.rows[tokenKey(email, purpose)]; ok {
		copied := *tok
		return &copied, nil
	}
	return nil, apperr.NotFound("Token")
}

func (f *fakeTokenRepository) ValueExists(_ context.Context, value string) (bool, error) {
	for _, tok := range f.rows {
		if tok.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenRepository) Replace(_ context.Context, tok *token.Token) error {
	copied := *tok
	f.rows[tokenKey(tok.Email, tok.Purpose)] = &copied
	return nil
}

func (f *fakeTokenRepository) UpdateExpiry(_ context.Context, email string, purpose token.Purpose, expires time.Time) error {
	tok, ok := f.rows[tokenKey(email, purpose)]
	if !ok {
		return apperr.NotFound("Token")
	}
	tok.Expires = expires
	return nil
}

func (f *fakeTokenRepository) Delete(_ context.Context, email string, purpose token.Purpose) error {
	delete(f.rows, tokenKey(email, purpose))
	return nil
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	sent     []sentMail
	failNext bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.failNext {
		f.failNext = false
		return errors.New("smtp: relay refused connection")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

// fixture wires the auth service against a real token service and fakes.
type fixture struct {
	service   *auth.Service
	tokens    *token.Service
	users     *fakeUserRepository
	tokenRepo *fakeTokenRepository
	mailer    *fakeMailer
}

func newFixture() *fixture {
	users := newFakeUserRepository()
	tokenRepo := &fakeTokenRepository{rows: make(map[string]*token.Token)}
	tokens := token.NewService(tokenRepo, users)
	mailer := &fakeMailer{}

	return &fixture{
		service:   auth.NewService(users, tokens, mailer, "http://localhost:8080"),
		tokens:    tokens,
		users:     users,
		tokenRepo: tokenRepo,
		mailer:    mailer,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

// lastMailToken extracts the token value from the last emailed link.
func (f *fixture) lastMailToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.mailer.sent)
	body := f.mailer.sent[len(f.mailer.sent)-1].body

	start := strings.LastIndex(body, `">`)
	require.Greater(t, start, 0)
	link := body[strings.Index(body, `href="`)+len(`href="`):]
	link = link[:strings.Index(link, `"`)]
	return link[strings.LastIndex(link, "/")+1:]
}

// # Registration

/*
TestRegister_Success verifies the happy path: unverified account, verification
token, and emailed link.
*/
func TestRegister_Success(t *testing.T) {
	f := newFixture()

	user := f.register(t, "alice", "alice@example.com", "s3cretpass")

	assert.False(t, user.Verified)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	// Exactly one mail, to the new user, carrying the stored token value.
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].to)

	tokenValue := f.lastMailToken(t)
	stored, err := f.tokenRepo.FindByValue(context.Background(), tokenValue)
	require.NoError(t, err)
	assert.Equal(t, token.PurposeVerification, stored.Purpose)
}

/*
TestRegister_Conflicts pins the check order: email before username.
*/
func TestRegister_Conflicts(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "s3cretpass")

	// Same email AND same username: the email conflict wins.
	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "otherpass1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, apperr.As(err).Message, "Email")

	// Fresh email, taken username.
	_, err = f.service.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "otherpass1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, apperr.As(err).Message, "Username")
}

/*
TestRegister_MailFailureRollsBack verifies the all-or-nothing enrollment:
an undeliverable verification email must not leave a half-created account.
*/
func TestRegister_MailFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.mailer.failNext = true

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "s3cretpass",
	})
	require.Error(t, err)
	assert.Equal(t, "UPSTREAM_FAILURE", apperr.As(err).Code)

	// No residue: the email is immediately reusable.
	_, err = f.users.FindByEmail(context.Background(), "bob@example.com")
	assert.True(t, apperr.IsNotFound(err))

	f.register(t, "bob", "bob@example.com", "s3cretpass")
}

// # Login

/*
TestLogin covers the verified gate and credential checks.
*/
func TestLogin(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "s3cretpass")
	ctx := context.Background()

	// Unverified account with the right password: Forbidden.
	_, err := f.service.Login(ctx, "alice@example.com", "s3cretpass")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Unverified account with a WRONG password: the generic credential
	// failure, so the response never reveals that the email is enrolled
	// but unverified.
	_, err = f.service.Login(ctx, "alice@example.com", "wrongpass1")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	require.NoError(t, f.service.VerifyAccount(ctx, f.lastMailToken(t)))

	// Wrong password and unknown email: identical Unauthorized shape.
	_, wrongPass := f.service.Login(ctx, "alice@example.com", "wrongpass1")
	_, unknown := f.service.Login(ctx, "ghost@example.com", "s3cretpass")
	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, apperr.As(wrongPass).Code, apperr.As(unknown).Code)
	assert.Equal(t, apperr.As(wrongPass).Message, apperr.As(unknown).Message)

	// Success: the returned bearer value authenticates.
	session, err := f.service.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	identity, err := f.tokens.VerifySession(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	// A second login replaces the first session.
	session2, err := f.service.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	_, err = f.tokens.VerifySession(ctx, session.AccessToken)
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.tokens.VerifySession(ctx, session2.AccessToken)
	assert.NoError(t, err)
}

// # Verification

/*
TestVerifyAccount verifies single-use semantics of the verification token.
*/
func TestVerifyAccount(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "s3cretpass")
	ctx := context.Background()
	tokenValue := f.lastMailToken(t)

	require.NoError(t, f.service.VerifyAccount(ctx, tokenValue))
	user, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)

	// Second click on the same link: the token no longer exists.
	err = f.service.VerifyAccount(ctx, tokenValue)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestVerifyAccount_WrongPurpose ensures session tokens cannot verify accounts.
*/
func TestVerifyAccount_WrongPurpose(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "s3cretpass")
	ctx := context.Background()

	require.NoError(t, f.service.VerifyAccount(ctx, f.lastMailToken(t)))
	session, err := f.service.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	err = f.service.VerifyAccount(ctx, session.AccessToken)
	assert.True(t, apperr.IsNotFound(err))
}

// # Password Reset

/*
TestPasswordResetFlow walks the full recovery path and checks the forced
re-login.
*/
func TestPasswordResetFlow(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "oldpassword")
	ctx := context.Background()

	require.NoError(t, f.service.VerifyAccount(ctx, f.lastMailToken(t)))
	session, err := f.service.Login(ctx, "alice@example.com", "oldpassword")
	require.NoError(t, err)

	// Request the reset and pull the token out of the email.
	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@example.com"))
	resetValue := f.lastMailToken(t)

	require.NoError(t, f.service.ResetPassword(ctx, resetValue, "newpassword1"))

	// Old session is dead, old password refused, new password works.
	_, err = f.tokens.VerifySession(ctx, session.AccessToken)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.service.Login(ctx, "alice@example.com", "oldpassword")
	require.Error(t, err)

	_, err = f.service.Login(ctx, "alice@example.com", "newpassword1")
	assert.NoError(t, err)

	// The reset token is single-use.
	err = f.service.ResetPassword(ctx, resetValue, "anotherpass1")
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestRequestPasswordReset_UnknownEmail returns NotFound without sending mail.
*/
func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newFixture()

	err := f.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, f.mailer.sent)
}
