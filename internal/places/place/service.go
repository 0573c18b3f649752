// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package place

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/filestore"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/internal/places/rating"
	"github.com/neverbeen/api/internal/places/thumbnail"
	"github.com/neverbeen/api/internal/policy"
	"github.com/neverbeen/api/pkg/geo"
	"github.com/neverbeen/api/pkg/pagination"
)

// Detail is the full place document served by the detail endpoint and held
// in the Redis cache.
type Detail struct {
	Place      Place                 `json:"place"`
	Ratings    []rating.Rating       `json:"ratings"`
	Thumbnails []thumbnail.Thumbnail `json:"thumbnails"`
}

// Service implements the place lifecycle use cases.
type Service struct {
	repository Repository
	ratings    RatingLister
	thumbnails ThumbnailLister
	files      filestore.Store
	cache      *Cache
}

// NewService constructs a new place [Service] with its dependencies.
func NewService(repository Repository, ratings RatingLister, thumbnails ThumbnailLister, files filestore.Store, cache *Cache) *Service {
	return &Service{
		repository: repository,
		ratings:    ratings,
		thumbnails: thumbnails,
		files:      files,
		cache:      cache,
	}
}

// # Creation

// CreateInput holds the data required to submit a new place.
type CreateInput struct {
	PlusCode     string
	FriendlyName string
	Country      *string
	Description  *string
}

/*
Create validates and persists a new place submission.

Description: The location code must be a FULL plus code; shortened codes
cannot be decoded without a reference point and are refused. Staff
submissions are visible immediately; everyone else's wait for moderation.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - input: CreateInput

Returns:
  - *Place: Created entity
  - error: ValidationError or persistence failures
*/
func (service *Service) Create(context context.Context, caller *sec.Identity, input CreateInput) (*Place, error) {
	if err := validatePlaceFields(input.PlusCode, input.FriendlyName, input.Country, input.Description); err != nil {
		return nil, err
	}

	place := &Place{
		PosterID:     caller.Username,
		PlusCode:     input.PlusCode,
		FriendlyName: input.FriendlyName,
		Country:      input.Country,
		Description:  input.Description,
		Rating:       UnratedSentinel,
		IsVisible:    caller.IsStaff(),
	}

	if err := service.repository.Create(context, place); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("place_created",
		slog.Int("place_id", place.PlaceID),
		slog.String("poster", caller.Username),
		slog.Bool("visible", place.IsVisible),
	)

	return place, nil
}

// validatePlaceFields checks the shared field constraints of create/patch.
func validatePlaceFields(plusCode, friendlyName string, country, description *string) error {
	validator := &validate.Validator{}
	validator.Required(FieldPlusCode, plusCode).
		MaxLen(FieldPlusCode, plusCode, MaxPlusCodeLen).
		Required(FieldFriendlyName, friendlyName).
		MaxLen(FieldFriendlyName, friendlyName, MaxFriendlyNameLen).
		Custom(FieldPlusCode, plusCode != "" && !geo.IsFullCode(plusCode), "must be a full plus code")
	if country != nil {
		validator.MaxLen(FieldCountry, *country, MaxCountryLen)
	}
	if description != nil {
		validator.MaxLen(FieldDescription, *description, MaxDescriptionLen)
	}
	return validator.Err()
}

// # Listing

// ListQuery captures the parameters of a place listing request.
type ListQuery struct {
	Order      Order
	Visibility Visibility
	Origin     geo.Point
	Params     pagination.Params
}

/*
List returns one page of places in the requested total ordering.

Description: Rating order is delegated to the database. Distance order must
go through the location-code decoder, so the service loads all matching
places, sorts by haversine distance from the origin, and pages in memory.
Places whose stored code no longer decodes sort last rather than failing the
whole listing.

Parameters:
  - context: context.Context
  - query: ListQuery

Returns:
  - []Place: Page of places
  - int: Total matching count
  - error: ValidationError or database errors
*/
func (service *Service) List(context context.Context, query ListQuery) ([]Place, int, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldOrder, !query.Order.Valid(), "must be one of: rating, distance").
		Custom(FieldVisibility, !query.Visibility.Valid(), "must be one of: all, verified, unverified")
	if err := validator.Err(); err != nil {
		return nil, 0, err
	}

	if query.Order == OrderRating {
		return service.repository.ListByRating(context, query.Visibility, query.Params.Limit, query.Params.Offset())
	}

	places, err := service.repository.ListAll(context, query.Visibility)
	if err != nil {
		return nil, 0, err
	}

	type measured struct {
		place    Place
		distance float64
	}

	entries := make([]measured, 0, len(places))
	for i := range places {
		distance := math.Inf(1)
		if point, err := geo.Decode(places[i].PlusCode); err == nil {
			distance = geo.DistanceKm(query.Origin, point)
		}
		entries = append(entries, measured{place: places[i], distance: distance})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].distance < entries[b].distance
	})

	total := len(entries)
	start, end := query.Params.Slice(total)

	page := make([]Place, 0, end-start)
	for _, entry := range entries[start:end] {
		page = append(page, entry.place)
	}
	return page, total, nil
}

// # Detail Reads

/*
Get returns the full detail document of a place, read through the cache.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - *Detail: Place plus its ratings and thumbnails
  - error: apperr.NotFound or storage errors
*/
func (service *Service) Get(context context.Context, placeID int) (*Detail, error) {
	cached, err := service.cache.Get(context, placeID)
	if err != nil {
		ctxutil.GetLogger(context).Warn("place_detail_cache_read_failed",
			slog.Int("place_id", placeID),
			slog.String(constants.FieldError, err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	place, err := service.repository.FindByID(context, placeID)
	if err != nil {
		return nil, err
	}

	ratings, err := service.ratings.ListForPlace(context, placeID)
	if err != nil {
		return nil, fmt.Errorf("place_service_detail_ratings_failed: %w", err)
	}

	thumbnails, err := service.thumbnails.ListForPlace(context, placeID)
	if err != nil {
		return nil, fmt.Errorf("place_service_detail_thumbnails_failed: %w", err)
	}

	detail := &Detail{
		Place:      *place,
		Ratings:    ratings,
		Thumbnails: thumbnails,
	}

	if err := service.cache.Set(context, placeID, detail); err != nil {
		ctxutil.GetLogger(context).Warn("place_detail_cache_write_failed",
			slog.Int("place_id", placeID),
			slog.String(constants.FieldError, err.Error()),
		)
	}

	return detail, nil
}

// # Mutation

// PatchInput holds the fields of a place edit. Nil fields are left as-is.
type PatchInput struct {
	PlusCode     *string
	FriendlyName *string
	Country      *string
	Description  *string
}

/*
Patch applies the supplied fields to a place. A patch with no fields is a
no-op and succeeds without touching storage.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - placeID: int
  - input: PatchInput

Returns:
  - *Place: Updated entity
  - error: apperr.NotFound, Forbidden, ValidationError, persistence failures
*/
func (service *Service) Patch(context context.Context, caller *sec.Identity, placeID int, input PatchInput) (*Place, error) {
	place, err := service.repository.FindByID(context, placeID)
	if err != nil {
		return nil, err
	}

	if !policy.CanMutatePlace(caller, place.PosterID) {
		return nil, apperr.Forbidden("You may not edit this place")
	}

	changed := false
	if input.PlusCode != nil {
		place.PlusCode = *input.PlusCode
		changed = true
	}
	if input.FriendlyName != nil {
		place.FriendlyName = *input.FriendlyName
		changed = true
	}
	if input.Country != nil {
		place.Country = input.Country
		changed = true
	}
	if input.Description != nil {
		place.Description = input.Description
		changed = true
	}

	if !changed {
		return place, nil
	}

	if err := validatePlaceFields(place.PlusCode, place.FriendlyName, place.Country, place.Description); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, place); err != nil {
		return nil, err
	}

	service.invalidateDetail(context, placeID)

	ctxutil.GetLogger(context).Info("place_updated",
		slog.Int("place_id", placeID),
		slog.String("updated_by", caller.Username),
	)

	return place, nil
}

/*
SetVisibility flips the moderation flag of a place. Staff only, both
directions.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - placeID: int
  - visible: bool

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or persistence failures
*/
func (service *Service) SetVisibility(context context.Context, caller *sec.Identity, placeID int, visible bool) error {
	if _, err := service.repository.FindByID(context, placeID); err != nil {
		return err
	}

	if !policy.CanToggleVisibility(caller) {
		return apperr.Forbidden("Only staff may change place visibility")
	}

	if err := service.repository.SetVisibility(context, placeID, visible); err != nil {
		return err
	}

	service.invalidateDetail(context, placeID)

	ctxutil.GetLogger(context).Info("place_visibility_changed",
		slog.Int("place_id", placeID),
		slog.Bool("visible", visible),
		slog.String("changed_by", caller.Username),
	)

	return nil
}

/*
Delete removes a place and everything attached to it.

Description: Thumbnail files and the place's storage directory go first;
ratings and thumbnail rows follow the row delete via FK cascade.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - placeID: int

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) Delete(context context.Context, caller *sec.Identity, placeID int) error {
	place, err := service.repository.FindByID(context, placeID)
	if err != nil {
		return err
	}

	if !policy.CanMutatePlace(caller, place.PosterID) {
		return apperr.Forbidden("You may not delete this place")
	}

	if err := service.files.RemoveAll(strconv.Itoa(placeID)); err != nil {
		return fmt.Errorf("place_service_file_cleanup_failed: %w", err)
	}

	if err := service.repository.Delete(context, placeID); err != nil {
		return err
	}

	service.invalidateDetail(context, placeID)

	ctxutil.GetLogger(context).Info("place_deleted",
		slog.Int("place_id", placeID),
		slog.String("deleted_by", caller.Username),
	)

	return nil
}

/*
PurgeUserContent removes the thumbnail files of every place a user posted.
Called by account deletion BEFORE the user row delete cascades the place
rows away.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - error: Storage errors
*/
func (service *Service) PurgeUserContent(context context.Context, username string) error {
	ids, err := service.repository.IDsByPoster(context, username)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := service.files.RemoveAll(strconv.Itoa(id)); err != nil {
			return fmt.Errorf("place_service_purge_failed: %w", err)
		}
		service.invalidateDetail(context, id)
	}

	return nil
}

// invalidateDetail drops the cached detail document. Cache errors are
// logged, never surfaced.
func (service *Service) invalidateDetail(context context.Context, placeID int) {
	if err := service.cache.Invalidate(context, placeID); err != nil {
		ctxutil.GetLogger(context).Warn("place_detail_cache_invalidate_failed",
			slog.Int("place_id", placeID),
			slog.String(constants.FieldError, err.Error()),
		)
	}
}
