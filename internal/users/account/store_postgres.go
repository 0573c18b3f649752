// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

// PostgreSQL implementation of the account-administration repository.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/places/rating"
	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
	"github.com/neverbeen/api/internal/platform/dberr"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/users/auth"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the account Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByUsername retrieves a user record by their unique public handle.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*auth.User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.Users.Email, schema.Users.Username, schema.Users.Verified,
		schema.Users.PasswordHash, schema.Users.AccessLevel, schema.Users.AccountCreated,
		schema.Users.Table,
		schema.Users.Username,
	)

	user := &auth.User{}
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
		return nil, fmt.Errorf("postgres_account_repo_find_failed: %w", err)
	}

	return user, nil
}

/*
List returns one page of accounts ordered by creation time (newest first),
plus the total account count.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []auth.User: Page of accounts
  - int: Total count
  - error: Database errors
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]auth.User, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Users.Table)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC, %s ASC
		LIMIT $1 OFFSET $2`,
		schema.Users.Email, schema.Users.Username, schema.Users.Verified,
		schema.Users.PasswordHash, schema.Users.AccessLevel, schema.Users.AccountCreated,
		schema.Users.Table,
		schema.Users.AccountCreated, schema.Users.Username,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]auth.User, 0, limit)
	for rows.Next() {
		var user auth.User
		err := rows.Scan(
			&user.Email,
			&user.Username,
			&user.Verified,
			&user.PasswordHash,
			&user.Role,
			&user.AccountCreated,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_rows_failed: %w", err)
	}

	return users, total, nil
}

/*
UpdateRole rewrites the account's access level.

Parameters:
  - context: context.Context
  - email: string
  - role: sec.Role

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) UpdateRole(context context.Context, email string, role sec.Role) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.AccessLevel, schema.Users.Email)

	tag, err := repository.pool.Exec(context, query, email, role)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_role_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
UpdateUsername rewrites the account's public handle. Owned places and ratings
follow via FK ON UPDATE CASCADE.

Parameters:
  - context: context.Context
  - email: string
  - username: string

Returns:
  - error: apperr.NotFound, apperr.Conflict on handle collision, or persistence failures
*/
func (repository *PostgresRepository) UpdateUsername(context context.Context, email string, username string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.Username, schema.Users.Email)

	tag, err := repository.pool.Exec(context, query, email, username)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username is already taken")
		}
		return fmt.Errorf("postgres_account_repo_update_username_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Delete removes the account row; tokens, places, ratings, and thumbnail rows
follow via ON DELETE CASCADE.

Description: The cascade silently takes the user's ratings with it, so every
place the user had rated is rescored in the same transaction. Places the user
owned vanish in the cascade too; rescoring those updates zero rows.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, email string) error {
	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		ratedQuery := fmt.Sprintf(`
			SELECT DISTINCT %s
			FROM %s
			WHERE %s = (SELECT %s FROM %s WHERE %s = $1)`,
			schema.Ratings.PlaceID,
			schema.Ratings.Table,
			schema.Ratings.Username, schema.Users.Username,
			schema.Users.Table, schema.Users.Email,
		)

		rows, err := tx.Query(context, ratedQuery, email)
		if err != nil {
			return err
		}

		ratedPlaces := make([]int, 0)
		for rows.Next() {
			var placeID int
			if err := rows.Scan(&placeID); err != nil {
				rows.Close()
				return err
			}
			ratedPlaces = append(ratedPlaces, placeID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.Users.Table, schema.Users.Email)

		tag, err := tx.Exec(context, deleteQuery, email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("User")
		}

		for _, placeID := range ratedPlaces {
			if err := rating.Rescore(context, tx, placeID); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("postgres_account_repo_delete_failed: %w", err)
	}

	return nil
}
