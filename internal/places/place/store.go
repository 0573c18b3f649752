// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package place

import (
	"context"

	"github.com/neverbeen/api/internal/places/rating"
	"github.com/neverbeen/api/internal/places/thumbnail"
)

// Repository defines the place data access contract.
type Repository interface {

	/*
		Create persists a new place row.

		Parameters:
		  - context: context.Context
		  - place: *Place (PlaceID is filled in on success)

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, place *Place) error

	/*
		FindByID returns a single place row.

		Parameters:
		  - context: context.Context
		  - placeID: int

		Returns:
		  - *Place: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, placeID int) (*Place, error)

	/*
		PosterID returns the owning username of a place.

		Parameters:
		  - context: context.Context
		  - placeID: int

		Returns:
		  - string: Owning username
		  - error: apperr.NotFound or database errors
	*/
	PosterID(context context.Context, placeID int) (string, error)

	/*
		ListByRating returns one page of places ordered by score descending,
		unrated (-1 sentinel) places last, plus the filtered total.

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
	ListByRating(context context.Context, visibility Visibility, limit, offset int) ([]Place, int, error)

	/*
		ListAll returns every place matching the visibility filter. Used for
		distance ordering, which must be computed outside the database.

		Parameters:
		  - context: context.Context
		  - visibility: Visibility

		Returns:
		  - []Place: All matching places
		  - error: Database errors
	*/
	ListAll(context context.Context, visibility Visibility) ([]Place, error)

	/*
		Update rewrites the mutable columns of a place row.

		Parameters:
		  - context: context.Context
		  - place: *Place

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Update(context context.Context, place *Place) error

	/*
		SetVisibility flips the moderation flag of a place.

		Parameters:
		  - context: context.Context
		  - placeID: int
		  - visible: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetVisibility(context context.Context, placeID int, visible bool) error

	/*
		Delete removes the place row; ratings and thumbnail rows follow via
		ON DELETE CASCADE.

		Parameters:
		  - context: context.Context
		  - placeID: int

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, placeID int) error

	/*
		IDsByPoster returns the IDs of every place a user posted.

		Parameters:
		  - context: context.Context
		  - posterID: string

		Returns:
		  - []int: Place IDs (possibly empty)
		  - error: Database errors
	*/
	IDsByPoster(context context.Context, posterID string) ([]int, error)
}

// RatingLister supplies the ratings embedded in a place detail document.
// Satisfied by the rating repository.
type RatingLister interface {
	ListForPlace(context context.Context, placeID int) ([]rating.Rating, error)
}

// ThumbnailLister supplies the thumbnails embedded in a place detail
// document. Satisfied by the thumbnail repository.
type ThumbnailLister interface {
	ListForPlace(context context.Context, placeID int) ([]thumbnail.Thumbnail, error)
}
