// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package rating implements the star-rating and score engine for places.

Every rating mutation (create, update, delete) recomputes the owning place's
aggregate score inside the same transaction, so the denormalized
places.rating column can never drift from the ratings table.
*/
package rating

import "time"

// # Constants

const (
	// MinValue is the lowest accepted star rating.
	MinValue = 1
	// MaxValue is the highest accepted star rating.
	MaxValue = 5
	// MaxCommentLen bounds the optional comment body.
	MaxCommentLen = 2000
)

// Field name constants for validation messages.
const (
	FieldValue   = "rating_value"
	FieldComment = "comment_body"
)

// # Entity

// Rating is one user's star rating of one place, optionally with a comment.
//
// The (Username, PlaceID) pair is unique: a user rates a place at most once
// and edits that rating afterwards.
type Rating struct {
	RatingID    int        `json:"rating_id"`
	PlaceID     int        `json:"place_id"`
	Username    string     `json:"username"`
	Value       int        `json:"rating_value"`
	CommentBody *string    `json:"comment_body,omitempty"`
	TimePosted  time.Time  `json:"time_posted"`
	TimeEdited  *time.Time `json:"time_edited,omitempty"`
}
