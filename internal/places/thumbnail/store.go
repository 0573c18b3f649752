// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package thumbnail

import "context"

// Repository defines the thumbnail data access contract.
type Repository interface {

	/*
		Create persists a new thumbnail row.

		Parameters:
		  - context: context.Context
		  - thumbnail: *Thumbnail (ImageID is filled in on success)

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, thumbnail *Thumbnail) error

	/*
		FindByID returns a single thumbnail row.

		Parameters:
		  - context: context.Context
		  - imageID: int

		Returns:
		  - *Thumbnail: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, imageID int) (*Thumbnail, error)

	/*
		ListForPlace returns all thumbnails of a place, oldest first.

		Parameters:
		  - context: context.Context
		  - placeID: int

		Returns:
		  - []Thumbnail: Thumbnails of the place (possibly empty)
		  - error: Database errors
	*/
	ListForPlace(context context.Context, placeID int) ([]Thumbnail, error)

	/*
		InternalURLExists reports whether a thumbnail of the place already
		uses the storage path. Queried freshly on every name draw.

		Parameters:
		  - context: context.Context
		  - placeID: int
		  - internalURL: string

		Returns:
		  - bool: true if the path is taken
		  - error: Database errors
	*/
	InternalURLExists(context context.Context, placeID int, internalURL string) (bool, error)

	/*
		SetVerified flips the moderation flag of one image.

		Parameters:
		  - context: context.Context
		  - imageID: int
		  - verified: bool

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetVerified(context context.Context, imageID int, verified bool) error

	/*
		Delete removes the thumbnail row.

		Parameters:
		  - context: context.Context
		  - imageID: int

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, imageID int) error
}

// PlaceDirectory resolves the place a thumbnail belongs to. Implemented by
// the place repository; defined here so this package does not import it.
type PlaceDirectory interface {

	// PosterID returns the owning username of a place, or apperr.NotFound.
	PosterID(context context.Context, placeID int) (string, error)
}

// DetailCache invalidates the cached detail document of a place after its
// thumbnail set changes. Implemented by the place detail cache.
type DetailCache interface {
	Invalidate(context context.Context, placeID int) error
}
