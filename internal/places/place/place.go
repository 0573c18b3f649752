// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package place implements the place lifecycle: creation, listing, detail
reads, moderation, and deletion of geocoded points of interest.

A place is identified by a full plus code. Its visibility starts at
"verified" only when the creator is staff; everyone else's submissions wait
for moderation. The aggregate rating column is denormalized and maintained by
the rating engine; -1 is the "no ratings yet" sentinel.
*/
package place

// # Constants

const (
	// MaxPlusCodeLen bounds the stored location code.
	MaxPlusCodeLen = 100
	// MaxFriendlyNameLen bounds the display name.
	MaxFriendlyNameLen = 100
	// MaxCountryLen bounds the optional country code.
	MaxCountryLen = 6
	// MaxDescriptionLen bounds the optional description.
	MaxDescriptionLen = 1000

	// UnratedSentinel is the aggregate score of a place without ratings.
	UnratedSentinel = -1
)

// Field name constants for validation messages.
const (
	FieldPlusCode     = "plus_code"
	FieldFriendlyName = "friendly_name"
	FieldCountry      = "country"
	FieldDescription  = "description"
	FieldOrder        = "order"
	FieldVisibility   = "visibility"
	FieldLatitude     = "lat"
	FieldLongitude    = "lng"
)

// # Enumerations

// Order selects the total ordering of a place listing.
type Order string

const (
	// OrderRating sorts by aggregate score descending; unrated places last.
	OrderRating Order = "rating"
	// OrderDistance sorts by distance from a supplied coordinate ascending.
	OrderDistance Order = "distance"
)

// Valid reports whether the order is a known listing order.
func (o Order) Valid() bool {
	switch o {
	case OrderRating, OrderDistance:
		return true
	default:
		return false
	}
}

// Visibility filters a place listing by moderation state.
type Visibility string

const (
	// VisibilityAll includes every place.
	VisibilityAll Visibility = "all"
	// VisibilityVerified includes only moderated-visible places.
	VisibilityVerified Visibility = "verified"
	// VisibilityUnverified includes only places awaiting moderation.
	VisibilityUnverified Visibility = "unverified"
)

// Valid reports whether the visibility is a known filter value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityAll, VisibilityVerified, VisibilityUnverified:
		return true
	default:
		return false
	}
}

// # Entity

// Place is a geocoded point of interest submitted by a user.
type Place struct {
	PlaceID      int     `json:"place_id"`
	PosterID     string  `json:"poster_id"`
	PlusCode     string  `json:"plus_code"`
	FriendlyName string  `json:"friendly_name"`
	Country      *string `json:"country,omitempty"`
	Description  *string `json:"description,omitempty"`
	Rating       float64 `json:"rating"`
	IsVisible    bool    `json:"is_visible"`
}
