// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
	"github.com/neverbeen/api/internal/platform/dberr"
)

// rescoreQuery recomputes the denormalized aggregate score of a place from
// its surviving ratings. -1 is the "no ratings" sentinel, never NULL, so the
// rating ordering of the place listing stays total.
var rescoreQuery = fmt.Sprintf(`
	UPDATE %s
	SET %s = COALESCE(
		(SELECT ROUND(AVG(%s)::numeric, 1)
		 FROM %s
		 WHERE %s = $1),
		-1)
	WHERE %s = $1`,
	schema.Places.Table,
	schema.Places.Rating,
	schema.Ratings.RatingValue,
	schema.Ratings.Table,
	schema.Ratings.PlaceID,
	schema.Places.PlaceID,
)

// ratingColumns is the select list shared by all hydrating queries.
var ratingColumns = fmt.Sprintf(`%s, %s, %s, %s, %s, %s, %s`,
	schema.Ratings.RatingID, schema.Ratings.PlaceID, schema.Ratings.Username,
	schema.Ratings.RatingValue, schema.Ratings.CommentBody,
	schema.Ratings.TimePosted, schema.Ratings.TimeEdited,
)

/*
Rescore recomputes the denormalized score of one place inside the caller's
transaction.

Description: Exported for repositories in other domains whose mutations
invalidate rating aggregates — most notably the cascade that account deletion
fires through a user's ratings. Rescoring a place that was itself removed by
the same cascade updates zero rows and is harmless.

Parameters:
  - context: context.Context
  - tx: pgx.Tx
  - placeID: int

Returns:
  - error: Persistence failures
*/
func Rescore(context context.Context, tx pgx.Tx, placeID int) error {
	if _, err := tx.Exec(context, rescoreQuery, placeID); err != nil {
		return fmt.Errorf("postgres_rating_repo_rescore_failed: %w", err)
	}
	return nil
}

// # Rating Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the rating Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
CreateAndRescore inserts a rating and recomputes the place score atomically.

Description: Both statements run in one transaction; the unique
(username, placeid) index surfaces duplicates as apperr.Conflict.

Parameters:
  - context: context.Context
  - rating: *Rating (RatingID is filled in on success)

Returns:
  - error: apperr.Conflict for duplicate ratings, or persistence failures
*/
func (repository *PostgresRepository) CreateAndRescore(context context.Context, rating *Rating) error {
	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		insertQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING %s`,
			schema.Ratings.Table,
			schema.Ratings.PlaceID, schema.Ratings.Username, schema.Ratings.RatingValue,
			schema.Ratings.CommentBody, schema.Ratings.TimePosted,
			schema.Ratings.RatingID,
		)

		err := tx.QueryRow(context, insertQuery,
			rating.PlaceID,
			rating.Username,
			rating.Value,
			rating.CommentBody,
			rating.TimePosted,
		).Scan(&rating.RatingID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(context, rescoreQuery, rating.PlaceID)
		return err
	})

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("You have already rated this place")
		}
		return fmt.Errorf("postgres_rating_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a single rating row.

Parameters:
  - context: context.Context
  - ratingID: int

Returns:
  - *Rating: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, ratingID int) (*Rating, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		ratingColumns,
		schema.Ratings.Table,
		schema.Ratings.RatingID,
	)

	rating := &Rating{}
	err := repository.pool.QueryRow(context, query, ratingID).Scan(
		&rating.RatingID,
		&rating.PlaceID,
		&rating.Username,
		&rating.Value,
		&rating.CommentBody,
		&rating.TimePosted,
		&rating.TimeEdited,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Rating")
		}
		return nil, fmt.Errorf("postgres_rating_repo_find_failed: %w", err)
	}

	return rating, nil
}

/*
ListForPlace returns all ratings of a place, newest first.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - []Rating: Ratings of the place (possibly empty)
  - error: Database errors
*/
func (repository *PostgresRepository) ListForPlace(context context.Context, placeID int) ([]Rating, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC`,
		ratingColumns,
		schema.Ratings.Table,
		schema.Ratings.PlaceID,
		schema.Ratings.TimePosted, schema.Ratings.RatingID,
	)

	rows, err := repository.pool.Query(context, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("postgres_rating_repo_list_failed: %w", err)
	}
	defer rows.Close()

	ratings := make([]Rating, 0)
	for rows.Next() {
		var rating Rating
		err := rows.Scan(
			&rating.RatingID,
			&rating.PlaceID,
			&rating.Username,
			&rating.Value,
			&rating.CommentBody,
			&rating.TimePosted,
			&rating.TimeEdited,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_rating_repo_scan_failed: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_rating_repo_rows_failed: %w", err)
	}

	return ratings, nil
}

/*
UpdateAndRescore rewrites a rating and recomputes the place score atomically.

Parameters:
  - context: context.Context
  - rating: *Rating

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) UpdateAndRescore(context context.Context, rating *Rating) error {
	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = $3, %s = $4
			WHERE %s = $1`,
			schema.Ratings.Table,
			schema.Ratings.RatingValue, schema.Ratings.CommentBody, schema.Ratings.TimeEdited,
			schema.Ratings.RatingID,
		)

		tag, err := tx.Exec(context, updateQuery,
			rating.RatingID,
			rating.Value,
			rating.CommentBody,
			rating.TimeEdited,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Rating")
		}

		_, err = tx.Exec(context, rescoreQuery, rating.PlaceID)
		return err
	})

	if err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("postgres_rating_repo_update_failed: %w", err)
	}

	return nil
}

/*
DeleteAndRescore removes a rating and recomputes the place score atomically.

Parameters:
  - context: context.Context
  - ratingID: int
  - placeID: int

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) DeleteAndRescore(context context.Context, ratingID, placeID int) error {
	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
			schema.Ratings.Table, schema.Ratings.RatingID)

		tag, err := tx.Exec(context, deleteQuery, ratingID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Rating")
		}

		_, err = tx.Exec(context, rescoreQuery, placeID)
		return err
	})

	if err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("postgres_rating_repo_delete_failed: %w", err)
	}

	return nil
}
