// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package rating

import (
	"context"
	"log/slog"
	"time"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/internal/policy"
)

// Service implements the rating use cases.
type Service struct {
	repository Repository
	places     PlaceDirectory
	cache      DetailCache
}

// NewService constructs a new rating [Service] with its dependencies.
func NewService(repository Repository, places PlaceDirectory, cache DetailCache) *Service {
	return &Service{
		repository: repository,
		places:     places,
		cache:      cache,
	}
}

// CreateInput holds the data required to rate a place.
type CreateInput struct {
	Value       int
	CommentBody *string
}

// UpdateInput holds the fields of a rating edit. Nil fields are left as-is.
type UpdateInput struct {
	Value       *int
	CommentBody *string
}

/*
Create records the caller's rating of a place and rescores it.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - placeID: int
  - input: CreateInput

Returns:
  - *Rating: Created entity
  - error: ValidationError, apperr.NotFound (place), apperr.Conflict (already rated)
*/
func (service *Service) Create(context context.Context, caller *sec.Identity, placeID int, input CreateInput) (*Rating, error) {
	validator := &validate.Validator{}
	validator.Range(FieldValue, input.Value, MinValue, MaxValue)
	if input.CommentBody != nil {
		validator.MaxLen(FieldComment, *input.CommentBody, MaxCommentLen)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Rating a nonexistent place is NotFound, never a silent orphan row.
	if _, err := service.places.PosterID(context, placeID); err != nil {
		return nil, err
	}

	rating := &Rating{
		PlaceID:     placeID,
		Username:    caller.Username,
		Value:       input.Value,
		CommentBody: input.CommentBody,
		TimePosted:  time.Now(),
	}

	if err := service.repository.CreateAndRescore(context, rating); err != nil {
		return nil, err
	}

	service.invalidateDetail(context, placeID)

	ctxutil.GetLogger(context).Info("rating_created",
		slog.Int("place_id", placeID),
		slog.String("username", caller.Username),
		slog.Int("value", input.Value),
	)

	return rating, nil
}

/*
ListForPlace returns all ratings of a place, newest first.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - []Rating: Ratings of the place
  - error: apperr.NotFound (place) or database errors
*/
func (service *Service) ListForPlace(context context.Context, placeID int) ([]Rating, error) {
	if _, err := service.places.PosterID(context, placeID); err != nil {
		return nil, err
	}

	return service.repository.ListForPlace(context, placeID)
}

/*
Update edits the caller's own rating and rescores the place.

Description: Rescoring runs unconditionally, even when only the comment
changed; recomputing an unchanged average is cheaper than tracking whether
the value moved.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - ratingID: int
  - input: UpdateInput

Returns:
  - *Rating: Updated entity
  - error: apperr.NotFound, apperr.Forbidden, ValidationError
*/
func (service *Service) Update(context context.Context, caller *sec.Identity, ratingID int, input UpdateInput) (*Rating, error) {
	rating, err := service.repository.FindByID(context, ratingID)
	if err != nil {
		return nil, err
	}

	if !policy.CanEditRating(caller, rating.Username) {
		return nil, apperr.Forbidden("You may only edit your own rating")
	}

	if input.Value != nil {
		rating.Value = *input.Value
	}
	if input.CommentBody != nil {
		rating.CommentBody = input.CommentBody
	}

	validator := &validate.Validator{}
	validator.Range(FieldValue, rating.Value, MinValue, MaxValue)
	if rating.CommentBody != nil {
		validator.MaxLen(FieldComment, *rating.CommentBody, MaxCommentLen)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	rating.TimeEdited = &now

	if err := service.repository.UpdateAndRescore(context, rating); err != nil {
		return nil, err
	}

	service.invalidateDetail(context, rating.PlaceID)

	ctxutil.GetLogger(context).Info("rating_updated",
		slog.Int("rating_id", ratingID),
		slog.Int("place_id", rating.PlaceID),
	)

	return rating, nil
}

/*
Delete removes a rating and rescores the place.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - ratingID: int

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or persistence failures
*/
func (service *Service) Delete(context context.Context, caller *sec.Identity, ratingID int) error {
	rating, err := service.repository.FindByID(context, ratingID)
	if err != nil {
		return err
	}

	if !policy.CanDeleteRating(caller, rating.Username) {
		return apperr.Forbidden("You may not delete this rating")
	}

	if err := service.repository.DeleteAndRescore(context, ratingID, rating.PlaceID); err != nil {
		return err
	}

	service.invalidateDetail(context, rating.PlaceID)

	ctxutil.GetLogger(context).Info("rating_deleted",
		slog.Int("rating_id", ratingID),
		slog.Int("place_id", rating.PlaceID),
		slog.String("deleted_by", caller.Username),
	)

	return nil
}

// invalidateDetail drops the cached place detail document. Cache errors are
// logged, never surfaced: the database already holds the new score.
func (service *Service) invalidateDetail(context context.Context, placeID int) {
	if err := service.cache.Invalidate(context, placeID); err != nil {
		ctxutil.GetLogger(context).Warn("place_detail_cache_invalidate_failed",
			slog.Int("place_id", placeID),
			slog.String(constants.FieldError, err.Error()),
		)
	}
}
