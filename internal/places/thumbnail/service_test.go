// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package thumbnail_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/filestore"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/places/thumbnail"
)

const baseURL = "http://localhost:8080"

// # Test Doubles

type fakeRepository struct {
	thumbnails map[int]*thumbnail.Thumbnail
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{thumbnails: make(map[int]*thumbnail.Thumbnail), nextID: 1}
}

func (repo *fakeRepository) Create(_ context.Context, entity *thumbnail.Thumbnail) error {
	entity.ImageID = repo.nextID
	repo.nextID++
	clone := *entity
	repo.thumbnails[entity.ImageID] = &clone
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, imageID int) (*thumbnail.Thumbnail, error) {
	entity, ok := repo.thumbnails[imageID]
	if !ok {
		return nil, apperr.NotFound("Thumbnail")
	}
	clone := *entity
	return &clone, nil
}

func (repo *fakeRepository) ListForPlace(_ context.Context, placeID int) ([]thumbnail.Thumbnail, error) {
	list := make([]thumbnail.Thumbnail, 0)
	for _, entity := range repo.thumbnails {
		if entity.PlaceID == placeID {
			list = append(list, *entity)
		}
	}
	return list, nil
}

func (repo *fakeRepository) InternalURLExists(_ context.Context, placeID int, internalURL string) (bool, error) {
	for _, entity := range repo.thumbnails {
		if entity.PlaceID == placeID && strings.HasSuffix(entity.InternalURL, internalURL) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeRepository) SetVerified(_ context.Context, imageID int, verified bool) error {
	entity, ok := repo.thumbnails[imageID]
	if !ok {
		return apperr.NotFound("Thumbnail")
	}
	entity.Verified = verified
	return nil
}

func (repo *fakeRepository) Delete(_ context.Context, imageID int) error {
	if _, ok := repo.thumbnails[imageID]; !ok {
		return apperr.NotFound("Thumbnail")
	}
	delete(repo.thumbnails, imageID)
	return nil
}

type fakePlaces struct {
	posters map[int]string
}

func (places *fakePlaces) PosterID(_ context.Context, placeID int) (string, error) {
	poster, ok := places.posters[placeID]
	if !ok {
		return "", apperr.NotFound("Place")
	}
	return poster, nil
}

type fakeCache struct {
	invalidated []int
}

func (cache *fakeCache) Invalidate(_ context.Context, placeID int) error {
	cache.invalidated = append(cache.invalidated, placeID)
	return nil
}

// # Fixtures

func identity(username string, role sec.Role) *sec.Identity {
	return &sec.Identity{
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
	}
}

func newFixture(t *testing.T) (*thumbnail.Service, *fakeRepository, string) {
	t.Helper()

	dir := t.TempDir()
	files, err := filestore.NewDisk(dir)
	require.NoError(t, err)

	repo := newFakeRepository()
	places := &fakePlaces{posters: map[int]string{1: "owner"}}
	service := thumbnail.NewService(repo, places, files, &fakeCache{}, baseURL)
	return service, repo, dir
}

func batch(names ...string) []thumbnail.Upload {
	uploads := make([]thumbnail.Upload, 0, len(names))
	for _, name := range names {
		uploads = append(uploads, thumbnail.Upload{
			Filename: name,
			Content:  strings.NewReader("image-bytes-of-" + name),
		})
	}
	return uploads
}

func filesIn(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// # Tests

/*
TestUploadBatch verifies batch upload: files on disk, generated names,
external URLs, default verification, and the all-or-nothing extension check.
*/
func TestUploadBatch(t *testing.T) {
	t.Run("owner uploads a batch", func(t *testing.T) {
		service, repo, dir := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		created, err := service.UploadBatch(context.Background(), owner, 1, batch("a.jpg", "b.PNG"))
		require.NoError(t, err)
		require.Len(t, created, 2)

		stored := filesIn(t, filepath.Join(dir, "1"))
		assert.Len(t, stored, 2)

		for _, entity := range created {
			assert.False(t, entity.Verified)
			assert.Equal(t, "owner", entity.Uploader)
			assert.True(t, strings.HasPrefix(entity.ExternalURL, baseURL+"/usercontent/1/"))
			name := filepath.Base(entity.InternalURL)
			assert.Len(t, strings.TrimSuffix(name, filepath.Ext(name)), thumbnail.NameLength)
		}
		assert.Len(t, repo.thumbnails, 2)
	})

	t.Run("uppercase extensions are normalized", func(t *testing.T) {
		service, _, _ := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		created, err := service.UploadBatch(context.Background(), owner, 1, batch("photo.JPEG"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(created[0].ExternalURL, ".jpeg"))
	})

	t.Run("staff uploads arrive pre-verified", func(t *testing.T) {
		service, _, _ := newFixture(t)

		created, err := service.UploadBatch(context.Background(), identity("root", sec.RoleAdmin), 1, batch("a.png"))
		require.NoError(t, err)
		assert.True(t, created[0].Verified)
	})

	t.Run("one bad extension fails the whole batch before any write", func(t *testing.T) {
		service, repo, dir := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		_, err := service.UploadBatch(context.Background(), owner, 1, batch("good.jpg", "evil.exe"))
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)

		assert.Empty(t, filesIn(t, filepath.Join(dir, "1")))
		assert.Empty(t, repo.thumbnails)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		service, _, _ := newFixture(t)

		_, err := service.UploadBatch(context.Background(), identity("owner", sec.RoleUser), 1, nil)
		require.Error(t, err)
	})

	t.Run("moderator who is not the owner may not upload", func(t *testing.T) {
		service, _, _ := newFixture(t)

		_, err := service.UploadBatch(context.Background(), identity("mod", sec.RoleModerator), 1, batch("a.jpg"))
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 403, appErr.HTTPStatus)
	})

	t.Run("unknown place is NotFound", func(t *testing.T) {
		service, _, _ := newFixture(t)

		_, err := service.UploadBatch(context.Background(), identity("owner", sec.RoleUser), 42, batch("a.jpg"))
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestSetVerified verifies the staff-only moderation toggle works in both
directions.
*/
func TestSetVerified(t *testing.T) {
	service, repo, _ := newFixture(t)
	owner := identity("owner", sec.RoleUser)

	created, err := service.UploadBatch(context.Background(), owner, 1, batch("a.jpg"))
	require.NoError(t, err)
	imageID := created[0].ImageID

	t.Run("uploader may not self-verify", func(t *testing.T) {
		err := service.SetVerified(context.Background(), owner, imageID, true)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 403, appErr.HTTPStatus)
	})

	t.Run("moderator verifies and unverifies", func(t *testing.T) {
		moderator := identity("mod", sec.RoleModerator)

		require.NoError(t, service.SetVerified(context.Background(), moderator, imageID, true))
		assert.True(t, repo.thumbnails[imageID].Verified)

		require.NoError(t, service.SetVerified(context.Background(), moderator, imageID, false))
		assert.False(t, repo.thumbnails[imageID].Verified)
	})

	t.Run("unknown image is NotFound", func(t *testing.T) {
		err := service.SetVerified(context.Background(), identity("mod", sec.RoleModerator), 99, true)
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestDeleteThumbnail verifies file-then-row deletion, directory cleanup, and
the place-poster-or-staff rule.
*/
func TestDeleteThumbnail(t *testing.T) {
	t.Run("poster deletes and the empty directory disappears", func(t *testing.T) {
		service, repo, dir := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		created, err := service.UploadBatch(context.Background(), owner, 1, batch("a.jpg"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), owner, created[0].ImageID)
		require.NoError(t, err)

		assert.Empty(t, repo.thumbnails)
		_, statErr := os.Stat(filepath.Join(dir, "1"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("directory survives while siblings remain", func(t *testing.T) {
		service, _, dir := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		created, err := service.UploadBatch(context.Background(), owner, 1, batch("a.jpg", "b.jpg"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), owner, created[0].ImageID)
		require.NoError(t, err)

		assert.Len(t, filesIn(t, filepath.Join(dir, "1")), 1)
	})

	t.Run("moderator deletes other users' thumbnails", func(t *testing.T) {
		service, repo, _ := newFixture(t)

		created, err := service.UploadBatch(context.Background(), identity("owner", sec.RoleUser), 1, batch("a.jpg"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), identity("mod", sec.RoleModerator), created[0].ImageID)
		require.NoError(t, err)
		assert.Empty(t, repo.thumbnails)
	})

	t.Run("poster deletes an admin-uploaded thumbnail", func(t *testing.T) {
		service, repo, _ := newFixture(t)
		owner := identity("owner", sec.RoleUser)

		created, err := service.UploadBatch(context.Background(), identity("root", sec.RoleAdmin), 1, batch("pic.jpg"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), owner, created[0].ImageID)
		require.NoError(t, err)
		assert.Empty(t, repo.thumbnails)
	})

	t.Run("stranger may not delete", func(t *testing.T) {
		service, _, _ := newFixture(t)

		created, err := service.UploadBatch(context.Background(), identity("owner", sec.RoleUser), 1, batch("a.jpg"))
		require.NoError(t, err)

		err = service.Delete(context.Background(), identity("stranger", sec.RoleUser), created[0].ImageID)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 403, appErr.HTTPStatus)
	})
}
