// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package thumbnail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/constants"
	"github.com/neverbeen/api/internal/platform/ctxutil"
	"github.com/neverbeen/api/internal/platform/filestore"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/policy"
)

// Service implements the thumbnail use cases.
type Service struct {
	repository    Repository
	places        PlaceDirectory
	files         filestore.Store
	cache         DetailCache
	publicBaseURL string
}

// NewService constructs a new thumbnail [Service] with its dependencies.
func NewService(repository Repository, places PlaceDirectory, files filestore.Store, cache DetailCache, publicBaseURL string) *Service {
	return &Service{
		repository:    repository,
		places:        places,
		files:         files,
		cache:         cache,
		publicBaseURL: publicBaseURL,
	}
}

// Upload is one file of an upload batch.
type Upload struct {
	Filename string
	Content  io.Reader
}

/*
UploadBatch stores a batch of thumbnails for a place.

Description: The extension allow-list is checked for EVERY file before the
first byte is written, so a bad filename late in the batch never leaves
partial uploads behind. Each stored file gets a fresh random name, re-drawn
on collision against the place's current thumbnail set.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - placeID: int
  - uploads: []Upload

Returns:
  - []Thumbnail: Created entities, in batch order
  - error: apperr.NotFound (place), Forbidden, ValidationError, storage errors
*/
func (service *Service) UploadBatch(context context.Context, caller *sec.Identity, placeID int, uploads []Upload) ([]Thumbnail, error) {
	posterID, err := service.places.PosterID(context, placeID)
	if err != nil {
		return nil, err
	}

	if !policy.CanUploadThumbnail(caller, posterID) {
		return nil, apperr.Forbidden("You may not upload thumbnails for this place")
	}

	if len(uploads) == 0 {
		return nil, apperr.ValidationError("No files provided")
	}

	// All-or-nothing validation pass before any write.
	for _, upload := range uploads {
		if !AllowedExtension(upload.Filename) {
			return nil, apperr.ValidationError("Unsupported file type: " + upload.Filename)
		}
	}

	created := make([]Thumbnail, 0, len(uploads))
	for _, upload := range uploads {
		thumbnail, err := service.storeOne(context, caller, placeID, upload)
		if err != nil {
			return nil, err
		}
		created = append(created, *thumbnail)
	}

	service.invalidateDetail(context, placeID)

	ctxutil.GetLogger(context).Info("thumbnails_uploaded",
		slog.Int("place_id", placeID),
		slog.Int("count", len(created)),
		slog.String("uploader", caller.Username),
	)

	return created, nil
}

// storeOne writes a single file and persists its row. A failed insert
// removes the freshly written file again.
func (service *Service) storeOne(context context.Context, caller *sec.Identity, placeID int, upload Upload) (*Thumbnail, error) {
	placeDir := strconv.Itoa(placeID)

	name, internalURL, err := service.uniqueName(context, placeID, upload.Filename)
	if err != nil {
		return nil, err
	}

	writtenPath, err := service.files.Write(placeDir, name, upload.Content)
	if err != nil {
		return nil, fmt.Errorf("thumbnail_service_write_failed: %w", err)
	}

	thumbnail := &Thumbnail{
		Uploader:    caller.Username,
		PlaceID:     placeID,
		InternalURL: writtenPath,
		ExternalURL: service.publicBaseURL + constants.UserContentRoute + "/" + internalURL,
		Verified:    caller.IsStaff(),
		UploadDate:  time.Now(),
	}

	if err := service.repository.Create(context, thumbnail); err != nil {
		_ = service.files.Delete(placeDir, name)
		return nil, err
	}

	return thumbnail, nil
}

// uniqueName draws a random file name not yet used by the place, keeping the
// original extension. Storage is re-queried on every attempt.
func (service *Service) uniqueName(context context.Context, placeID int, filename string) (string, string, error) {
	extension := strings.ToLower(filepath.Ext(filename))

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		base, err := sec.RandomString(NameLength)
		if err != nil {
			return "", "", fmt.Errorf("thumbnail_service_name_failed: %w", err)
		}

		name := base + extension
		internalURL := path.Join(strconv.Itoa(placeID), name)

		taken, err := service.repository.InternalURLExists(context, placeID, internalURL)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return name, internalURL, nil
		}
	}

	return "", "", apperr.Internal(fmt.Errorf("thumbnail_service_name_exhausted after %d attempts", maxNameAttempts))
}

/*
ListForPlace returns all thumbnails of a place, oldest first.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - []Thumbnail: Thumbnails of the place
  - error: apperr.NotFound (place) or database errors
*/
func (service *Service) ListForPlace(context context.Context, placeID int) ([]Thumbnail, error) {
	if _, err := service.places.PosterID(context, placeID); err != nil {
		return nil, err
	}

	return service.repository.ListForPlace(context, placeID)
}

/*
SetVerified flips the moderation flag of one image. Staff only, independent
per image, both directions.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - imageID: int
  - verified: bool

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or persistence failures
*/
func (service *Service) SetVerified(context context.Context, caller *sec.Identity, imageID int, verified bool) error {
	thumbnail, err := service.repository.FindByID(context, imageID)
	if err != nil {
		return err
	}

	if !policy.CanVerifyThumbnail(caller) {
		return apperr.Forbidden("Only staff may moderate thumbnails")
	}

	if err := service.repository.SetVerified(context, imageID, verified); err != nil {
		return err
	}

	service.invalidateDetail(context, thumbnail.PlaceID)

	ctxutil.GetLogger(context).Info("thumbnail_visibility_changed",
		slog.Int("image_id", imageID),
		slog.Bool("verified", verified),
		slog.String("changed_by", caller.Username),
	)

	return nil
}

/*
Delete removes a thumbnail: backing file first, then the row. The place's
storage directory is removed when the deletion leaves it empty.

Parameters:
  - context: context.Context
  - caller: *sec.Identity
  - imageID: int

Returns:
  - error: apperr.NotFound, apperr.Forbidden, or storage errors
*/
func (service *Service) Delete(context context.Context, caller *sec.Identity, imageID int) error {
	thumbnail, err := service.repository.FindByID(context, imageID)
	if err != nil {
		return err
	}

	// The gate is the place's poster, not the uploader: the poster curates
	// their gallery even for images an admin attached.
	posterID, err := service.places.PosterID(context, thumbnail.PlaceID)
	if err != nil {
		return err
	}

	if !policy.CanDeleteThumbnail(caller, posterID) {
		return apperr.Forbidden("You may not delete this thumbnail")
	}

	placeDir := strconv.Itoa(thumbnail.PlaceID)
	name := filepath.Base(thumbnail.InternalURL)

	if err := service.files.Delete(placeDir, name); err != nil {
		return fmt.Errorf("thumbnail_service_file_delete_failed: %w", err)
	}

	if err := service.repository.Delete(context, imageID); err != nil {
		return err
	}

	if err := service.files.RemoveDirIfEmpty(placeDir); err != nil {
		return fmt.Errorf("thumbnail_service_dir_cleanup_failed: %w", err)
	}

	service.invalidateDetail(context, thumbnail.PlaceID)

	ctxutil.GetLogger(context).Info("thumbnail_deleted",
		slog.Int("image_id", imageID),
		slog.Int("place_id", thumbnail.PlaceID),
		slog.String("deleted_by", caller.Username),
	)

	return nil
}

// invalidateDetail drops the cached place detail document. Cache errors are
// logged, never surfaced.
func (service *Service) invalidateDetail(context context.Context, placeID int) {
	if err := service.cache.Invalidate(context, placeID); err != nil {
		ctxutil.GetLogger(context).Warn("place_detail_cache_invalidate_failed",
			slog.Int("place_id", placeID),
			slog.String(constants.FieldError, err.Error()),
		)
	}
}
