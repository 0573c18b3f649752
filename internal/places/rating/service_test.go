// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package rating_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/internal/platform/apperr"
	"github.com/neverbeen/api/internal/platform/sec"
	"github.com/neverbeen/api/internal/places/rating"
)

// # Test Doubles

// fakeRepository keeps ratings in memory and mirrors the transactional
// rescore: every mutation recomputes the place score map.
type fakeRepository struct {
	ratings map[int]*rating.Rating
	scores  map[int]float64
	nextID  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		ratings: make(map[int]*rating.Rating),
		scores:  make(map[int]float64),
		nextID:  1,
	}
}

func (repo *fakeRepository) CreateAndRescore(_ context.Context, entity *rating.Rating) error {
	for _, existing := range repo.ratings {
		if existing.PlaceID == entity.PlaceID && existing.Username == entity.Username {
			return apperr.Conflict("You have already rated this place")
		}
	}

	entity.RatingID = repo.nextID
	repo.nextID++
	clone := *entity
	repo.ratings[entity.RatingID] = &clone
	repo.rescore(entity.PlaceID)
	return nil
}

func (repo *fakeRepository) FindByID(_ context.Context, ratingID int) (*rating.Rating, error) {
	entity, ok := repo.ratings[ratingID]
	if !ok {
		return nil, apperr.NotFound("Rating")
	}
	clone := *entity
	return &clone, nil
}

func (repo *fakeRepository) ListForPlace(_ context.Context, placeID int) ([]rating.Rating, error) {
	list := make([]rating.Rating, 0)
	for _, entity := range repo.ratings {
		if entity.PlaceID == placeID {
			list = append(list, *entity)
		}
	}
	return list, nil
}

func (repo *fakeRepository) UpdateAndRescore(_ context.Context, entity *rating.Rating) error {
	if _, ok := repo.ratings[entity.RatingID]; !ok {
		return apperr.NotFound("Rating")
	}
	clone := *entity
	repo.ratings[entity.RatingID] = &clone
	repo.rescore(entity.PlaceID)
	return nil
}

func (repo *fakeRepository) DeleteAndRescore(_ context.Context, ratingID, placeID int) error {
	if _, ok := repo.ratings[ratingID]; !ok {
		return apperr.NotFound("Rating")
	}
	delete(repo.ratings, ratingID)
	repo.rescore(placeID)
	return nil
}

func (repo *fakeRepository) rescore(placeID int) {
	sum, count := 0, 0
	for _, entity := range repo.ratings {
		if entity.PlaceID == placeID {
			sum += entity.Value
			count++
		}
	}
	if count == 0 {
		repo.scores[placeID] = -1
		return
	}
	repo.scores[placeID] = math.Round(float64(sum)/float64(count)*10) / 10
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

func newFixture() (*rating.Service, *fakeRepository, *fakeCache) {
	repo := newFakeRepository()
	places := &fakePlaces{posters: map[int]string{1: "owner", 2: "owner"}}
	cache := &fakeCache{}
	return rating.NewService(repo, places, cache), repo, cache
}

func comment(text string) *string { return &text }

// # Tests

/*
TestCreateRating verifies rating creation: validation bounds, place
existence, duplicate refusal, and the transactional rescore.
*/
func TestCreateRating(t *testing.T) {
	t.Run("success rescores the place and drops the cache", func(t *testing.T) {
		service, repo, cache := newFixture()
		alice := identity("alice", sec.RoleUser)

		created, err := service.Create(context.Background(), alice, 1, rating.CreateInput{
			Value:       4,
			CommentBody: comment("Lovely spot"),
		})
		require.NoError(t, err)
		assert.NotZero(t, created.RatingID)
		assert.Equal(t, "alice", created.Username)
		assert.InDelta(t, 4.0, repo.scores[1], 0.01)
		assert.Equal(t, []int{1}, cache.invalidated)
	})

	t.Run("score is the rounded mean of all ratings", func(t *testing.T) {
		service, repo, _ := newFixture()

		_, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 1, rating.CreateInput{Value: 4})
		require.NoError(t, err)
		_, err = service.Create(context.Background(), identity("bob", sec.RoleUser), 1, rating.CreateInput{Value: 5})
		require.NoError(t, err)
		_, err = service.Create(context.Background(), identity("carol", sec.RoleUser), 1, rating.CreateInput{Value: 5})
		require.NoError(t, err)

		// mean(4,5,5) = 4.666... -> 4.7
		assert.InDelta(t, 4.7, repo.scores[1], 0.01)
	})

	tests := []struct {
		name  string
		value int
	}{
		{name: "zero stars rejected", value: 0},
		{name: "six stars rejected", value: 6},
		{name: "negative stars rejected", value: -3},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			service, _, _ := newFixture()

			_, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 1, rating.CreateInput{
				Value: testCase.value,
			})
			require.Error(t, err)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, 400, appErr.HTTPStatus)
		})
	}

	t.Run("unknown place is NotFound", func(t *testing.T) {
		service, _, _ := newFixture()

		_, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 99, rating.CreateInput{Value: 3})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("second rating of the same place is a conflict", func(t *testing.T) {
		service, _, _ := newFixture()
		alice := identity("alice", sec.RoleUser)

		_, err := service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 3})
		require.NoError(t, err)

		_, err = service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 5})
		assert.True(t, apperr.IsConflict(err))
	})
}

/*
TestUpdateRating verifies the owner-only edit rule, the edit stamp, and the
unconditional rescore.
*/
func TestUpdateRating(t *testing.T) {
	t.Run("owner edit stamps timeedited and rescores", func(t *testing.T) {
		service, repo, cache := newFixture()
		alice := identity("alice", sec.RoleUser)

		created, err := service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 2})
		require.NoError(t, err)

		newValue := 5
		updated, err := service.Update(context.Background(), alice, created.RatingID, rating.UpdateInput{
			Value: &newValue,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Value)
		require.NotNil(t, updated.TimeEdited)
		assert.WithinDuration(t, time.Now(), *updated.TimeEdited, time.Minute)
		assert.InDelta(t, 5.0, repo.scores[1], 0.01)
		assert.Len(t, cache.invalidated, 2)
	})

	t.Run("comment-only edit keeps the value", func(t *testing.T) {
		service, _, _ := newFixture()
		alice := identity("alice", sec.RoleUser)

		created, err := service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 3})
		require.NoError(t, err)

		updated, err := service.Update(context.Background(), alice, created.RatingID, rating.UpdateInput{
			CommentBody: comment("Changed my mind about the food"),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Value)
		require.NotNil(t, updated.CommentBody)
	})

	t.Run("edit is owner-only, even for admins", func(t *testing.T) {
		service, _, _ := newFixture()

		created, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 1, rating.CreateInput{Value: 3})
		require.NoError(t, err)

		value := 1
		_, err = service.Update(context.Background(), identity("root", sec.RoleAdmin), created.RatingID, rating.UpdateInput{
			Value: &value,
		})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 403, appErr.HTTPStatus)
	})

	t.Run("edited value is still bounded", func(t *testing.T) {
		service, _, _ := newFixture()
		alice := identity("alice", sec.RoleUser)

		created, err := service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 3})
		require.NoError(t, err)

		value := 9
		_, err = service.Update(context.Background(), alice, created.RatingID, rating.UpdateInput{Value: &value})
		require.Error(t, err)
	})
}

/*
TestDeleteRating verifies the owner-or-admin delete rule and the -1 sentinel
when the last rating disappears.
*/
func TestDeleteRating(t *testing.T) {
	t.Run("deleting the last rating restores the sentinel", func(t *testing.T) {
		service, repo, _ := newFixture()
		alice := identity("alice", sec.RoleUser)

		created, err := service.Create(context.Background(), alice, 1, rating.CreateInput{Value: 4})
		require.NoError(t, err)

		err = service.Delete(context.Background(), alice, created.RatingID)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, repo.scores[1], 0.01)
	})

	t.Run("admin may delete anyone's rating", func(t *testing.T) {
		service, repo, _ := newFixture()

		created, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 1, rating.CreateInput{Value: 4})
		require.NoError(t, err)

		err = service.Delete(context.Background(), identity("root", sec.RoleAdmin), created.RatingID)
		require.NoError(t, err)
		assert.Empty(t, repo.ratings)
	})

	t.Run("moderator may not delete ratings", func(t *testing.T) {
		service, _, _ := newFixture()

		created, err := service.Create(context.Background(), identity("alice", sec.RoleUser), 1, rating.CreateInput{Value: 4})
		require.NoError(t, err)

		err = service.Delete(context.Background(), identity("mod", sec.RoleModerator), created.RatingID)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, 403, appErr.HTTPStatus)
	})

	t.Run("unknown rating is NotFound", func(t *testing.T) {
		service, _, _ := newFixture()

		err := service.Delete(context.Background(), identity("alice", sec.RoleUser), 42)
		assert.True(t, apperr.IsNotFound(err))
	})
}
