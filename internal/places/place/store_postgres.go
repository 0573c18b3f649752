// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package place

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
)

// placeColumns is the select list shared by all hydrating queries.
var placeColumns = fmt.Sprintf(`%s, %s, %s, %s, %s, %s, %s, %s`,
	schema.Places.PlaceID, schema.Places.PosterID, schema.Places.PlusCode,
	schema.Places.FriendlyName, schema.Places.Country, schema.Places.Description,
	schema.Places.Rating, schema.Places.IsVisible,
)

// # Place Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the place Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// visibilityCondition maps the filter to a SQL predicate on isvisible.
func visibilityCondition(visibility Visibility) string {
	switch visibility {
	case VisibilityVerified:
		return schema.Places.IsVisible + ` = true`
	case VisibilityUnverified:
		return schema.Places.IsVisible + ` = false`
	default:
		return `true`
	}
}

/*
Create persists a new place row.

Parameters:
  - context: context.Context
  - place: *Place (PlaceID is filled in on success)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, place *Place) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`,
		schema.Places.Table,
		schema.Places.PosterID, schema.Places.PlusCode, schema.Places.FriendlyName,
		schema.Places.Country, schema.Places.Description, schema.Places.Rating,
		schema.Places.IsVisible,
		schema.Places.PlaceID,
	)

	err := repository.pool.QueryRow(context, query,
		place.PosterID,
		place.PlusCode,
		place.FriendlyName,
		place.Country,
		place.Description,
		place.Rating,
		place.IsVisible,
	).Scan(&place.PlaceID)

	if err != nil {
		return fmt.Errorf("postgres_place_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a single place row.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - *Place: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, placeID int) (*Place, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		placeColumns, schema.Places.Table, schema.Places.PlaceID)

	place := &Place{}
	err := repository.pool.QueryRow(context, query, placeID).Scan(
		&place.PlaceID,
		&place.PosterID,
		&place.PlusCode,
		&place.FriendlyName,
		&place.Country,
		&place.Description,
		&place.Rating,
		&place.IsVisible,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Place")
		}
		return nil, fmt.Errorf("postgres_place_repo_find_failed: %w", err)
	}

	return place, nil
}

/*
PosterID retrieves only the owning username of a place.

Description: Runs on every rating and thumbnail mutation, so it selects a
single column instead of hydrating the full entity.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - string: Owning username
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) PosterID(context context.Context, placeID int) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Places.PosterID, schema.Places.Table, schema.Places.PlaceID)

	var posterID string
	err := repository.pool.QueryRow(context, query, placeID).Scan(&posterID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("Place")
		}
		return "", fmt.Errorf("postgres_place_repo_poster_failed: %w", err)
	}

	return posterID, nil
}

/*
ListByRating returns one page of places ordered by score descending, plus
the filtered total.

Description: `(rating < 0)` sorts the -1 sentinel after every real score, so
unrated places always trail the listing regardless of direction.

Parameters:
  - context: context.Context
  - visibility: Visibility
  - limit: int
  - offset: int

Returns:
  - []Place: Page of places
  - int: Total matching count
  - error: Database errors
*/
func (repository *PostgresRepository) ListByRating(context context.Context, visibility Visibility, limit, offset int) ([]Place, int, error) {
	condition := visibilityCondition(visibility)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`,
		schema.Places.Table, condition)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_place_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY (%s < 0), %s DESC, %s ASC
		LIMIT $1 OFFSET $2`,
		placeColumns,
		schema.Places.Table,
		condition,
		schema.Places.Rating, schema.Places.Rating, schema.Places.PlaceID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_place_repo_list_failed: %w", err)
	}
	defer rows.Close()

	places, err := scanPlaces(rows)
	if err != nil {
		return nil, 0, err
	}

	return places, total, nil
}

/*
ListAll returns every place matching the visibility filter.

Parameters:
  - context: context.Context
  - visibility: Visibility

Returns:
  - []Place: All matching places
  - error: Database errors
*/
func (repository *PostgresRepository) ListAll(context context.Context, visibility Visibility) ([]Place, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s ASC`,
		placeColumns,
		schema.Places.Table,
		visibilityCondition(visibility),
		schema.Places.PlaceID,
	)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_place_repo_list_all_failed: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

// scanPlaces drains a result set of placeColumns rows.
func scanPlaces(rows pgx.Rows) ([]Place, error) {
	places := make([]Place, 0)
	for rows.Next() {
		var place Place
		err := rows.Scan(
			&place.PlaceID,
			&place.PosterID,
			&place.PlusCode,
			&place.FriendlyName,
			&place.Country,
			&place.Description,
			&place.Rating,
			&place.IsVisible,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_place_repo_scan_failed: %w", err)
		}
		places = append(places, place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_place_repo_rows_failed: %w", err)
	}

	return places, nil
}

/*
Update rewrites the mutable columns of a place row. The aggregate rating and
visibility flag have dedicated update paths and are not touched here.

Parameters:
  - context: context.Context
  - place: *Place

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, place *Place) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1`,
		schema.Places.Table,
		schema.Places.PlusCode, schema.Places.FriendlyName,
		schema.Places.Country, schema.Places.Description,
		schema.Places.PlaceID,
	)

	tag, err := repository.pool.Exec(context, query,
		place.PlaceID,
		place.PlusCode,
		place.FriendlyName,
		place.Country,
		place.Description,
	)
	if err != nil {
		return fmt.Errorf("postgres_place_repo_update_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Place")
	}

	return nil
}

/*
SetVisibility flips the moderation flag of a place.

Parameters:
  - context: context.Context
  - placeID: int
  - visible: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) SetVisibility(context context.Context, placeID int, visible bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Places.Table, schema.Places.IsVisible, schema.Places.PlaceID)

	tag, err := repository.pool.Exec(context, query, placeID, visible)
	if err != nil {
		return fmt.Errorf("postgres_place_repo_set_visibility_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Place")
	}

	return nil
}

/*
Delete removes the place row; ratings and thumbnail rows cascade.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, placeID int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Places.Table, schema.Places.PlaceID)

	tag, err := repository.pool.Exec(context, query, placeID)
	if err != nil {
		return fmt.Errorf("postgres_place_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Place")
	}

	return nil
}

/*
IDsByPoster returns the IDs of every place a user posted.

Parameters:
  - context: context.Context
  - posterID: string

Returns:
  - []int: Place IDs (possibly empty)
  - error: Database errors
*/
func (repository *PostgresRepository) IDsByPoster(context context.Context, posterID string) ([]int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Places.PlaceID, schema.Places.Table, schema.Places.PosterID)

	rows, err := repository.pool.Query(context, query, posterID)
	if err != nil {
		return nil, fmt.Errorf("postgres_place_repo_ids_by_poster_failed: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres_place_repo_id_scan_failed: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_place_repo_id_rows_failed: %w", err)
	}

	return ids, nil
}
