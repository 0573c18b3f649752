// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

// PostgreSQL implementation of the user repository.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
	"github.com/neverbeen/api/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the neverbeen.users table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.Users.Table,
		schema.Users.Email, schema.Users.Username, schema.Users.Verified,
		schema.Users.PasswordHash, schema.Users.AccessLevel, schema.Users.AccountCreated,
	)

	_, err := repository.pool.Exec(context, query,
		user.Email,
		user.Username,
		user.Verified,
		user.PasswordHash,
		user.Role,
		user.AccountCreated,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Users.Email, schema.Users.Username, schema.Users.Verified,
		schema.Users.PasswordHash, schema.Users.AccessLevel, schema.Users.AccountCreated,
		schema.Users.Table,
		schema.Users.Email,
	)

	user := &User{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.Email,
		&user.Username,
		&user.Verified,
		&user.PasswordHash,
		&user.Role,
		&user.AccountCreated,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique public handle.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Users.Email, schema.Users.Username, schema.Users.Verified,
		schema.Users.PasswordHash, schema.Users.AccessLevel, schema.Users.AccountCreated,
		schema.Users.Table,
		schema.Users.Username,
	)

	user := &User{}
	err := repository.pool.QueryRow(context, query, username).Scan(
		&user.Email,
		&user.Username,
		&user.Verified,
		&user.PasswordHash,
		&user.Role,
		&user.AccountCreated,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindIdentity retrieves the lightweight identity projection of an account.

Description: Runs on every authenticated request (token resolution), so it
selects only the three identity columns instead of hydrating the full entity.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *sec.Identity: Email, username, and role
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindIdentity(context context.Context, email string) (*sec.Identity, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Users.Email, schema.Users.Username, schema.Users.AccessLevel,
		schema.Users.Table,
		schema.Users.Email,
	)

	identity := &sec.Identity{}
	err := repository.pool.QueryRow(context, query, email).Scan(
		&identity.Email,
		&identity.Username,
		&identity.Role,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_identity_failed: %w", err)
	}

	return identity, nil
}

/*
SetVerified flips the account's email-verification flag.

Parameters:
  - context: context.Context
  - email: string
  - verified: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresUserRepository) SetVerified(context context.Context, email string, verified bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.Verified, schema.Users.Email)

	tag, err := repository.pool.Exec(context, query, email, verified)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_verified_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdatePassword replaces only the user's password hash.

Parameters:
  - context: context.Context
  - email: string
  - passwordHash: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, email string, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.PasswordHash, schema.Users.Email)

	tag, err := repository.pool.Exec(context, query, email, passwordHash)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Delete removes the account row.

Description: Places, ratings, thumbnails, and tokens follow via ON DELETE
CASCADE; the caller is responsible for cleaning up thumbnail files on disk
BEFORE invoking this.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresUserRepository) Delete(context context.Context, email string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Users.Table, schema.Users.Email)

	tag, err := repository.pool.Exec(context, query, email)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
