// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/users/token"
)

// fakeRepository is an in-memory Repository keyed like the real table.
type fakeRepository struct {
	rows map[string]*token.Token // key: email|purpose
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[string]*token.Token)}
}

func ownerKey(email string, purpose token.Purpose) string {
	return email + "|" + string(purpose)
}

func (f *fakeRepository) FindByValue(_ context.Context, value string) (*token.Token, error) {
	for _, tok := range f.rows {
		if tok.Value == value {
			copied := *tok
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Token")
}

func (f *fakeRepository) FindByOwner(_ context.Context, email string, purpose token.Purpose) (*token.Token, error) {
	if tok, ok := f.rows[ownerKey(email, purpose)]; ok {
		copied := *tok
		return &copied, nil
	}
	return nil, apperr.NotFound("Token")
}

func (f *fakeRepository) ValueExists(_ context.Context, value string) (bool, error) {
	for _, tok := range f.rows {
		if tok.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Replace(_ context.Context, tok *token.Token) error {
	copied := *tok
	f.rows[ownerKey(tok.Email, tok.Purpose)] = &copied
	return nil
}

func (f *fakeRepository) UpdateExpiry(_ context.Context, email string, purpose token.Purpose, expires time.Time) error {
	tok, ok := f.rows[ownerKey(email, purpose)]
	if !ok {
		return apperr.NotFound("Token")
	}
	tok.Expires = expires
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, email string, purpose token.Purpose) error {
	delete(f.rows, ownerKey(email, purpose))
	return nil
}

// fakeDirectory resolves a fixed set of users.
type fakeDirectory struct {
	users map[string]*sec.Identity
}

func (f *fakeDirectory) FindIdentity(_ context.Context, email string) (*sec.Identity, error) {
	if identity, ok := f.users[email]; ok {
		return identity, nil
	}
	return nil, apperr.NotFound("User")
}

func newFixture() (*token.Service, *fakeRepository) {
	repo := newFakeRepository()
	directory := &fakeDirectory{users: map[string]*sec.Identity{
		"alice@example.com": {Email: "alice@example.com", Username: "alice", Role: sec.RoleUser},
		"mod@example.com":   {Email: "mod@example.com", Username: "mod", Role: sec.RoleModerator},
	}}
	return token.NewService(repo, directory), repo
}

/*
TestIssue_ReplacesPriorToken verifies the single-live-token invariant.
*/
func TestIssue_ReplacesPriorToken(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	first, err := service.Issue(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	assert.Len(t, first, token.ValueLength)

	second, err := service.Issue(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// The first value is dead, the second is live.
	_, err = repo.FindByValue(ctx, first)
	assert.True(t, apperr.IsNotFound(err))

	tok, err := repo.FindByValue(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, token.PurposeAccount, tok.Purpose)

	// Different purposes coexist for the same user.
	_, err = service.Issue(ctx, "alice@example.com", token.PurposeVerification)
	require.NoError(t, err)
	_, err = repo.FindByValue(ctx, second)
	assert.NoError(t, err)
}

/*
TestIssue_UnknownUser rejects issuance for emails with no account.
*/
func TestIssue_UnknownUser(t *testing.T) {
	service, _ := newFixture()

	_, err := service.Issue(context.Background(), "ghost@example.com", token.PurposeAccount)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestValidate_SlidingAccountExpiry verifies that each successful validation
pushes the Account expiry 15 minutes forward.
*/
func TestValidate_SlidingAccountExpiry(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	value, err := service.Issue(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)

	// Simulate an old-but-live session: 1 minute left on the clock.
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposeAccount, time.Now().Add(1*time.Minute)))

	tok, identity, err := service.Validate(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	// Expiry slid to ~now+15m, both on the returned token and in storage.
	assert.WithinDuration(t, time.Now().Add(token.AccountSessionTTL), tok.Expires, 2*time.Second)
	stored, err := repo.FindByOwner(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	assert.WithinDuration(t, tok.Expires, stored.Expires, time.Second)
}

/*
TestValidate_ExpiredIsNotNotFound pins the distinction between a lapsed token
and an unknown one.
*/
func TestValidate_ExpiredIsNotNotFound(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	value, err := service.Issue(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposeAccount, time.Now().Add(-1*time.Minute)))

	_, _, err = service.Validate(ctx, value)
	assert.True(t, apperr.IsExpired(err))
	assert.False(t, apperr.IsNotFound(err))

	_, _, err = service.Validate(ctx, "no-such-value")
	assert.True(t, apperr.IsNotFound(err))
	assert.False(t, apperr.IsExpired(err))
}

/*
TestValidate_PassResetExpiresWithoutSliding verifies the fixed reset window.
*/
func TestValidate_PassResetExpiresWithoutSliding(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	value, err := service.Issue(ctx, "alice@example.com", token.PurposePassReset)
	require.NoError(t, err)

	// Live reset token: validation must NOT move the expiry.
	before, err := repo.FindByOwner(ctx, "alice@example.com", token.PurposePassReset)
	require.NoError(t, err)

	_, _, err = service.Validate(ctx, value)
	require.NoError(t, err)

	after, err := repo.FindByOwner(ctx, "alice@example.com", token.PurposePassReset)
	require.NoError(t, err)
	assert.Equal(t, before.Expires, after.Expires)

	// Lapsed reset token is Expired.
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposePassReset, time.Now().Add(-time.Hour)))
	_, _, err = service.Validate(ctx, value)
	assert.True(t, apperr.IsExpired(err))
}

/*
TestValidate_VerificationNeverExpires pins the deliberate non-enforcement of
the stored verification expiry.
*/
func TestValidate_VerificationNeverExpires(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	value, err := service.Issue(ctx, "alice@example.com", token.PurposeVerification)
	require.NoError(t, err)

	// Even a wildly stale expiry does not invalidate the link.
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposeVerification, time.Now().Add(-30*24*time.Hour)))

	_, identity, err := service.Validate(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
}

/*
TestVerifySession_OnlyAccountTokensAuthenticate ensures reset and verification
values are useless as bearer credentials.
*/
func TestVerifySession_OnlyAccountTokensAuthenticate(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()

	accountValue, err := service.Issue(ctx, "mod@example.com", token.PurposeAccount)
	require.NoError(t, err)
	resetValue, err := service.Issue(ctx, "mod@example.com", token.PurposePassReset)
	require.NoError(t, err)

	identity, err := service.VerifySession(ctx, accountValue)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, identity.Role)

	_, err = service.VerifySession(ctx, resetValue)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestRefreshAndRevoke covers the session maintenance paths.
*/
func TestRefreshAndRevoke(t *testing.T) {
	service, repo := newFixture()
	ctx := context.Background()

	// Refresh without a session
	err := service.Refresh(ctx, "alice@example.com")
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.Issue(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposeAccount, time.Now().Add(time.Minute)))

	// Refresh slides the window
	require.NoError(t, service.Refresh(ctx, "alice@example.com"))
	stored, err := repo.FindByOwner(ctx, "alice@example.com", token.PurposeAccount)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(token.AccountSessionTTL), stored.Expires, 2*time.Second)

	// Refresh on a lapsed session
	require.NoError(t, repo.UpdateExpiry(ctx, "alice@example.com", token.PurposeAccount, time.Now().Add(-time.Minute)))
	err = service.Refresh(ctx, "alice@example.com")
	assert.True(t, apperr.IsExpired(err))

	// Revoke is idempotent
	require.NoError(t, service.Revoke(ctx, "alice@example.com", token.PurposeAccount))
	require.NoError(t, service.Revoke(ctx, "alice@example.com", token.PurposeAccount))
	_, err = repo.FindByOwner(ctx, "alice@example.com", token.PurposeAccount)
	assert.True(t, apperr.IsNotFound(err))
}
