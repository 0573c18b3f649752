// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neverbeen/api/internal/platform/middleware"
	requestutil "github.com/neverbeen/api/internal/platform/request"
	"github.com/neverbeen/api/internal/platform/respond"
	"github.com/neverbeen/api/internal/platform/validate"
)

// Handler implements rating HTTP endpoints.
type Handler struct {
	ratingService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{ratingService: service}
}

// PlaceRoutes returns the rating routes nested under a place
// (/places/{placeID}/ratings).
func (handler *Handler) PlaceRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listForPlace)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
	})

	return router
}

// Routes returns the rating routes addressed by rating ID (/ratings).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/{ratingID}", handler.update)
		r.Delete("/{ratingID}", handler.delete)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Value       int     `json:"rating_value"`
	CommentBody *string `json:"comment_body"`
}

type updateRequest struct {
	Value       *int    `json:"rating_value"`
	CommentBody *string `json:"comment_body"`
}

/*
create records the caller's rating of a place.

POST /api/v1/places/{placeID}/ratings

Response:
  - 201: Rating: Created rating
  - 400: Value outside 1..5 or oversized comment
  - 404: Unknown place
  - 409: Caller already rated this place
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	placeID, err := requestutil.IntParam(request, "placeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	rating, err := handler.ratingService.Create(request.Context(), caller, placeID, CreateInput{
		Value:       input.Value,
		CommentBody: input.CommentBody,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, rating)
}

/*
listForPlace returns all ratings of a place.

GET /api/v1/places/{placeID}/ratings

Response:
  - 200: []Rating
  - 404: Unknown place
*/
func (handler *Handler) listForPlace(writer http.ResponseWriter, request *http.Request) {
	placeID, err := requestutil.IntParam(request, "placeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ratings, err := handler.ratingService.ListForPlace(request.Context(), placeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ratings)
}

/*
update edits the caller's own rating.

PATCH /api/v1/ratings/{ratingID}

Response:
  - 200: Rating: Updated rating
  - 400: Value outside 1..5 or oversized comment
  - 403: Not the rating owner
  - 404: Unknown rating
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ratingID, err := requestutil.IntParam(request, "ratingID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	rating, err := handler.ratingService.Update(request.Context(), caller, ratingID, UpdateInput{
		Value:       input.Value,
		CommentBody: input.CommentBody,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rating)
}

/*
delete removes a rating.

DELETE /api/v1/ratings/{ratingID}

Response:
  - 204: Rating removed
  - 403: Caller may not delete this rating
  - 404: Unknown rating
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	ratingID, err := requestutil.IntParam(request, "ratingID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.ratingService.Delete(request.Context(), caller, ratingID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
