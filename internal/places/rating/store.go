// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package rating

import "context"

// Repository defines the rating data access contract.
//
// The *AndRescore operations pair the row mutation with the aggregate-score
// recomputation of the owning place in one transaction.
type Repository interface {

	/*
		CreateAndRescore inserts a new rating and recomputes the place score.

		Parameters:
		  - context: context.Context
		  - rating: *Rating (RatingID is filled in on success)

		Returns:
		  - error: apperr.Conflict when the user already rated the place,
		    or persistence failures
	*/
	CreateAndRescore(context context.Context, rating *Rating) error

	/*
		FindByID returns a single rating row.

		Parameters:
		  - context: context.Context
		  - ratingID: int

		Returns:
		  - *Rating: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, ratingID int) (*Rating, error)

	/*
		ListForPlace returns all ratings of a place, newest first.

		Parameters:
		  - context: context.Context
		  - placeID: int

		Returns:
		  - []Rating: Ratings of the place (possibly empty)
		  - error: Database errors
	*/
	ListForPlace(context context.Context, placeID int) ([]Rating, error)

	/*
		UpdateAndRescore rewrites a rating's value, comment, and edit stamp,
		then recomputes the place score.

		Parameters:
		  - context: context.Context
		  - rating: *Rating

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateAndRescore(context context.Context, rating *Rating) error

	/*
		DeleteAndRescore removes a rating and recomputes the place score.

		Parameters:
		  - context: context.Context
		  - ratingID: int
		  - placeID: int

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	DeleteAndRescore(context context.Context, ratingID, placeID int) error
}

// PlaceDirectory resolves the place a rating targets. Implemented by the
// place repository; defined here so this package does not import it.
type PlaceDirectory interface {

	// PosterID returns the owning username of a place, or apperr.NotFound.
	PosterID(context context.Context, placeID int) (string, error)
}

// DetailCache invalidates the cached detail document of a place after a
// score change. Implemented by the place detail cache.
type DetailCache interface {
	Invalidate(context context.Context, placeID int) error
}
