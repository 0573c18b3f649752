// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
)

// # Token Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the token Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByValue retrieves the token row holding the given opaque value.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - *Token: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByValue(context context.Context, value string) (*Token, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Tokens.Email, schema.Tokens.Type, schema.Tokens.Token, schema.Tokens.Expires,
		schema.Tokens.Table,
		schema.Tokens.Token,
	)

	tok := &Token{}
	err := repository.pool.QueryRow(context, query, value).Scan(
		&tok.Email,
		&tok.Purpose,
		&tok.Value,
		&tok.Expires,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_by_value_failed: %w", err)
	}

	return tok, nil
}

/*
FindByOwner retrieves the live token for an (email, purpose) pair.

Parameters:
  - context: context.Context
  - email: string
  - purpose: Purpose

Returns:
  - *Token: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByOwner(context context.Context, email string, purpose Purpose) (*Token, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		schema.Tokens.Email, schema.Tokens.Type, schema.Tokens.Token, schema.Tokens.Expires,
		schema.Tokens.Table,
		schema.Tokens.Email, schema.Tokens.Type,
	)

	tok := &Token{}
	err := repository.pool.QueryRow(context, query, email, purpose).Scan(
		&tok.Email,
		&tok.Purpose,
		&tok.Value,
		&tok.Expires,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_by_owner_failed: %w", err)
	}

	return tok, nil
}

/*
ValueExists reports whether any live token already carries the value.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - bool: true if the value is taken
  - error: Database errors
*/
func (repository *PostgresRepository) ValueExists(context context.Context, value string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Tokens.Table, schema.Tokens.Token)

	var exists bool
	if err := repository.pool.QueryRow(context, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_token_repo_value_exists_failed: %w", err)
	}

	return exists, nil
}

/*
Replace atomically swaps the (email, purpose) token for a new one.

Description: Runs DELETE + INSERT inside one transaction so a user can never
hold two live tokens of the same purpose, and never loses the old token
without gaining the new one.

Parameters:
  - context: context.Context
  - tok: *Token

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Replace(context context.Context, tok *Token) error {
	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			schema.Tokens.Table, schema.Tokens.Email, schema.Tokens.Type)
		if _, err := tx.Exec(context, deleteQuery, tok.Email, tok.Purpose); err != nil {
			return err
		}

		insertQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s)
			VALUES ($1, $2, $3, $4)`,
			schema.Tokens.Table,
			schema.Tokens.Email, schema.Tokens.Type, schema.Tokens.Token, schema.Tokens.Expires,
		)
		_, err := tx.Exec(context, insertQuery, tok.Email, tok.Purpose, tok.Value, tok.Expires)
		return err
	})

	if err != nil {
		return fmt.Errorf("postgres_token_repo_replace_failed: %w", err)
	}

	return nil
}

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
func (repository *PostgresRepository) UpdateExpiry(context context.Context, email string, purpose Purpose, expires time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3
		WHERE %s = $1 AND %s = $2`,
		schema.Tokens.Table,
		schema.Tokens.Expires,
		schema.Tokens.Email, schema.Tokens.Type,
	)

	tag, err := repository.pool.Exec(context, query, email, purpose, expires)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_update_expiry_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Token")
	}

	return nil
}

/*
Delete removes the (email, purpose) token. Idempotent.

Parameters:
  - context: context.Context
  - email: string
  - purpose: Purpose

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, email string, purpose Purpose) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.Tokens.Table, schema.Tokens.Email, schema.Tokens.Type)

	if _, err := repository.pool.Exec(context, query, email, purpose); err != nil {
		return fmt.Errorf("postgres_token_repo_delete_failed: %w", err)
	}

	return nil
}
