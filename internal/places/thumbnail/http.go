// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package thumbnail

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/middleware"
	requestutil "github.com/neverbeen/api/internal/platform/request"
	"github.com/neverbeen/api/internal/platform/respond"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/platform/validate"
)

// maxUploadBytes bounds a whole multipart upload batch (32 MiB).
const maxUploadBytes = 32 << 20

// Handler implements thumbnail HTTP endpoints.
type Handler struct {
	thumbnailService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{thumbnailService: service}
}

// PlaceRoutes returns the thumbnail routes nested under a place
// (/places/{placeID}/thumbnails).
func (handler *Handler) PlaceRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listForPlace)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.upload)
	})

	return router
}

// Routes returns the thumbnail routes addressed by image ID (/thumbnails).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Delete("/{imageID}", handler.delete)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(sec.RoleModerator))
		r.Put("/{imageID}/visibility", handler.setVisibility)
	})

	return router
}

// # Request Payloads

type setVisibilityRequest struct {
	Verified *bool `json:"verified"`
}

/*
upload stores a batch of thumbnails for a place.

POST /api/v1/places/{placeID}/thumbnails (multipart/form-data, field "files")

Response:
  - 201: []Thumbnail: Created thumbnails
  - 400: Missing files or unsupported file type
  - 403: Caller is neither place owner nor admin
  - 404: Unknown place
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
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

	if err := request.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart body"))
		return
	}

	fileHeaders := request.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		respond.Error(writer, request, apperr.ValidationError("No files provided"))
		return
	}

	uploads := make([]Upload, 0, len(fileHeaders))
	opened := make([]interface{ Close() error }, 0, len(fileHeaders))
	defer func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}()

	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			respond.Error(writer, request, apperr.Internal(err))
			return
		}
		opened = append(opened, file)
		uploads = append(uploads, Upload{Filename: header.Filename, Content: file})
	}

	created, err := handler.thumbnailService.UploadBatch(request.Context(), caller, placeID, uploads)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
listForPlace returns all thumbnails of a place.

GET /api/v1/places/{placeID}/thumbnails

Response:
  - 200: []Thumbnail
  - 404: Unknown place
*/
func (handler *Handler) listForPlace(writer http.ResponseWriter, request *http.Request) {
	placeID, err := requestutil.IntParam(request, "placeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	thumbnails, err := handler.thumbnailService.ListForPlace(request.Context(), placeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, thumbnails)
}

/*
setVisibility flips the moderation flag of one image.

PUT /api/v1/thumbnails/{imageID}/visibility

Response:
  - 200: Thumbnail verified flag confirmation
  - 400: Missing verified field
  - 403: Caller is not staff
  - 404: Unknown image
*/
func (handler *Handler) setVisibility(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	imageID, err := requestutil.IntParam(request, "imageID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setVisibilityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	if input.Verified == nil {
		respond.Error(writer, request, apperr.ValidationError("verified field is required"))
		return
	}

	if err := handler.thumbnailService.SetVerified(request.Context(), caller, imageID, *input.Verified); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"verified": *input.Verified})
}

/*
delete removes a thumbnail and its backing file.

DELETE /api/v1/thumbnails/{imageID}

Response:
  - 204: Thumbnail removed
  - 403: Caller is neither uploader nor staff
  - 404: Unknown image
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	imageID, err := requestutil.IntParam(request, "imageID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.thumbnailService.Delete(request.Context(), caller, imageID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
