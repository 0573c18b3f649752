// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package thumbnail

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/database/schema"
)

// thumbnailColumns is the select list shared by all hydrating queries.
var thumbnailColumns = fmt.Sprintf(`%s, %s, %s, %s, %s, %s, %s`,
	schema.Thumbnails.ImageID, schema.Thumbnails.Uploader, schema.Thumbnails.PlaceID,
	schema.Thumbnails.InternalURL, schema.Thumbnails.ExternalURL,
	schema.Thumbnails.Verified, schema.Thumbnails.UploadDate,
)

// # Thumbnail Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the thumbnail Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new thumbnail row.

Parameters:
  - context: context.Context
  - thumbnail: *Thumbnail (ImageID is filled in on success)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, thumbnail *Thumbnail) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		schema.Thumbnails.Table,
		schema.Thumbnails.Uploader, schema.Thumbnails.PlaceID, schema.Thumbnails.InternalURL,
		schema.Thumbnails.ExternalURL, schema.Thumbnails.Verified, schema.Thumbnails.UploadDate,
		schema.Thumbnails.ImageID,
	)

	err := repository.pool.QueryRow(context, query,
		thumbnail.Uploader,
		thumbnail.PlaceID,
		thumbnail.InternalURL,
		thumbnail.ExternalURL,
		thumbnail.Verified,
		thumbnail.UploadDate,
	).Scan(&thumbnail.ImageID)

	if err != nil {
		return fmt.Errorf("postgres_thumbnail_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a single thumbnail row.

Parameters:
  - context: context.Context
  - imageID: int

Returns:
  - *Thumbnail: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, imageID int) (*Thumbnail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		thumbnailColumns,
		schema.Thumbnails.Table,
		schema.Thumbnails.ImageID,
	)

	thumbnail := &Thumbnail{}
	err := repository.pool.QueryRow(context, query, imageID).Scan(
		&thumbnail.ImageID,
		&thumbnail.Uploader,
		&thumbnail.PlaceID,
		&thumbnail.InternalURL,
		&thumbnail.ExternalURL,
		&thumbnail.Verified,
		&thumbnail.UploadDate,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Thumbnail")
		}
		return nil, fmt.Errorf("postgres_thumbnail_repo_find_failed: %w", err)
	}

	return thumbnail, nil
}

/*
ListForPlace returns all thumbnails of a place, oldest first.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - []Thumbnail: Thumbnails of the place (possibly empty)
  - error: Database errors
*/
func (repository *PostgresRepository) ListForPlace(context context.Context, placeID int) ([]Thumbnail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC, %s ASC`,
		thumbnailColumns,
		schema.Thumbnails.Table,
		schema.Thumbnails.PlaceID,
		schema.Thumbnails.UploadDate, schema.Thumbnails.ImageID,
	)

	rows, err := repository.pool.Query(context, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("postgres_thumbnail_repo_list_failed: %w", err)
	}
	defer rows.Close()

	thumbnails := make([]Thumbnail, 0)
	for rows.Next() {
		var thumbnail Thumbnail
		err := rows.Scan(
			&thumbnail.ImageID,
			&thumbnail.Uploader,
			&thumbnail.PlaceID,
			&thumbnail.InternalURL,
			&thumbnail.ExternalURL,
			&thumbnail.Verified,
			&thumbnail.UploadDate,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_thumbnail_repo_scan_failed: %w", err)
		}
		thumbnails = append(thumbnails, thumbnail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_thumbnail_repo_rows_failed: %w", err)
	}

	return thumbnails, nil
}

/*
InternalURLExists reports whether a thumbnail of the place already uses the
storage path.

Parameters:
  - context: context.Context
  - placeID: int
  - internalURL: string

Returns:
  - bool: true if the path is taken
  - error: Database errors
*/
func (repository *PostgresRepository) InternalURLExists(context context.Context, placeID int, internalURL string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE %s = $1 AND %s = $2
		)`,
		schema.Thumbnails.Table,
		schema.Thumbnails.PlaceID, schema.Thumbnails.InternalURL,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, placeID, internalURL).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_thumbnail_repo_exists_failed: %w", err)
	}

	return exists, nil
}

/*
SetVerified flips the moderation flag of one image.

Parameters:
  - context: context.Context
  - imageID: int
  - verified: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) SetVerified(context context.Context, imageID int, verified bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Thumbnails.Table, schema.Thumbnails.Verified, schema.Thumbnails.ImageID)

	tag, err := repository.pool.Exec(context, query, imageID, verified)
	if err != nil {
		return fmt.Errorf("postgres_thumbnail_repo_set_verified_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Thumbnail")
	}

	return nil
}

/*
Delete removes the thumbnail row.

Parameters:
  - context: context.Context
  - imageID: int

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, imageID int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Thumbnails.Table, schema.Thumbnails.ImageID)

	tag, err := repository.pool.Exec(context, query, imageID)
	if err != nil {
		return fmt.Errorf("postgres_thumbnail_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Thumbnail")
	}

	return nil
}
