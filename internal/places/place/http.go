// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package place

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/middleware"
	requestutil "github.com/neverbeen/api/internal/platform/request"
	"github.com/neverbeen/api/internal/platform/respond"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
	"github.com/neverbeen/api/pkg/geo"
	"github.com/neverbeen/api/pkg/pagination"
)

// Handler implements place HTTP endpoints.
type Handler struct {
	placeService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{placeService: service}
}

// Routes returns a [chi.Router] configured with place routes. Rating and
// thumbnail sub-resources are mounted by the API server, not here.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/", handler.list)
	router.Get("/{placeID}", handler.get)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Patch("/{placeID}", handler.patch)
		r.Delete("/{placeID}", handler.delete)
	})

	// Staff endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Put("/{placeID}/visibility", handler.setVisibility)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	PlusCode     string  `json:"plus_code"`
	FriendlyName string  `json:"friendly_name"`
	Country      *string `json:"country"`
	Description  *string `json:"description"`
}

type patchRequest struct {
	PlusCode     *string `json:"plus_code"`
	FriendlyName *string `json:"friendly_name"`
	Country      *string `json:"country"`
	Description  *string `json:"description"`
}

type setVisibilityRequest struct {
	Visible *bool `json:"is_visible"`
}

/*
create submits a new place.

POST /api/v1/places

Response:
  - 201: Place: Created place (unverified unless the caller is staff)
  - 400: Missing fields or non-full plus code
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	place, err := handler.placeService.Create(request.Context(), caller, CreateInput{
		PlusCode:     input.PlusCode,
		FriendlyName: input.FriendlyName,
		Country:      input.Country,
		Description:  input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, place)
}

/*
list returns one page of places.

GET /api/v1/places?order=rating|distance&lat=..&lng=..&visibility=all|verified|unverified&page=N&limit=M

Response:
  - 200: Paginated list of places
  - 400: Unknown order/visibility or missing coordinates for distance order
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	queryValues := request.URL.Query()

	order := Order(queryValues.Get("order"))
	if order == "" {
		order = OrderRating
	}

	visibility := Visibility(queryValues.Get("visibility"))
	if visibility == "" {
		visibility = VisibilityAll
	}

	listQuery := ListQuery{
		Order:      order,
		Visibility: visibility,
		Params:     pagination.FromRequest(request),
	}

	if order == OrderDistance {
		origin, err := parseOrigin(queryValues.Get("lat"), queryValues.Get("lng"))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		listQuery.Origin = origin
	}

	places, total, err := handler.placeService.List(request.Context(), listQuery)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, places, pagination.NewMeta(listQuery.Params.Page, listQuery.Params.Limit, total))
}

// parseOrigin parses and bounds the coordinate pair of a distance listing.
func parseOrigin(rawLat, rawLng string) (geo.Point, error) {
	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lng, lngErr := strconv.ParseFloat(rawLng, 64)

	if latErr != nil || lngErr != nil {
		return geo.Point{}, apperr.ValidationError("Distance ordering requires numeric lat and lng")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return geo.Point{}, apperr.ValidationError("Coordinates out of range")
	}

	return geo.Point{Lat: lat, Lng: lng}, nil
}

/*
get returns the full detail document of a place.

GET /api/v1/places/{placeID}

Response:
  - 200: Detail: Place with its ratings and thumbnails
  - 404: Unknown place
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	placeID, err := requestutil.IntParam(request, "placeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.placeService.Get(request.Context(), placeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detail)
}

/*
patch edits the supplied fields of a place.

PATCH /api/v1/places/{placeID}

Response:
  - 200: Place: Updated place
  - 400: Invalid field values
  - 403: Caller is neither owner nor staff
  - 404: Unknown place
*/
func (handler *Handler) patch(writer http.ResponseWriter, request *http.Request) {
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

	var input patchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	place, err := handler.placeService.Patch(request.Context(), caller, placeID, PatchInput{
		PlusCode:     input.PlusCode,
		FriendlyName: input.FriendlyName,
		Country:      input.Country,
		Description:  input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, place)
}

/*
setVisibility flips the moderation flag of a place.

PUT /api/v1/places/{placeID}/visibility

Response:
  - 200: Visibility confirmation
  - 400: Missing is_visible field
  - 403: Caller is not staff
  - 404: Unknown place
*/
func (handler *Handler) setVisibility(writer http.ResponseWriter, request *http.Request) {
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

	var input setVisibilityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	if input.Visible == nil {
		respond.Error(writer, request, apperr.ValidationError("is_visible field is required"))
		return
	}

	if err := handler.placeService.SetVisibility(request.Context(), caller, placeID, *input.Visible); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"is_visible": *input.Visible})
}

/*
delete removes a place and everything attached to it.

DELETE /api/v1/places/{placeID}

Response:
  - 204: Place removed
  - 403: Caller is neither owner nor staff
  - 404: Unknown place
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
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

	if err := handler.placeService.Delete(request.Context(), caller, placeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
