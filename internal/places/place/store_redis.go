// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

// Redis read-through cache for place detail documents.
package place

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neverbeen/api/internal/platform/constants"
)

// detailTTL bounds how long a detail document may serve stale reads if an
// invalidation is ever missed.
const detailTTL = 5 * time.Minute

// Cache is the Redis-backed place detail cache.
//
// A nil *Cache is valid and behaves as a permanent miss, which keeps the
// service testable without a Redis instance.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a detail cache on top of the shared Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func detailKey(placeID int) string {
	return constants.RedisPrefixPlaceDetail + strconv.Itoa(placeID)
}

/*
Get returns the cached detail document of a place.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - *Detail: Cached document, or nil on a miss
  - error: Transport failures (a corrupt document counts as a miss)
*/
func (cache *Cache) Get(context context.Context, placeID int) (*Detail, error) {
	if cache == nil || cache.client == nil {
		return nil, nil
	}

	payload, err := cache.client.Get(context, detailKey(placeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("place_cache_get_failed: %w", err)
	}

	detail := &Detail{}
	if err := json.Unmarshal(payload, detail); err != nil {
		// Corrupt entry: drop it and treat as a miss.
		_ = cache.client.Del(context, detailKey(placeID)).Err()
		return nil, nil
	}

	return detail, nil
}

/*
Set stores the detail document of a place with the cache TTL.

Parameters:
  - context: context.Context
  - placeID: int
  - detail: *Detail

Returns:
  - error: Marshalling or transport failures
*/
func (cache *Cache) Set(context context.Context, placeID int, detail *Detail) error {
	if cache == nil || cache.client == nil {
		return nil
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("place_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, detailKey(placeID), payload, detailTTL).Err(); err != nil {
		return fmt.Errorf("place_cache_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops the cached detail document of a place. Also satisfies the
rating and thumbnail packages' DetailCache contract.

Parameters:
  - context: context.Context
  - placeID: int

Returns:
  - error: Transport failures
*/
func (cache *Cache) Invalidate(context context.Context, placeID int) error {
	if cache == nil || cache.client == nil {
		return nil
	}

	if err := cache.client.Del(context, detailKey(placeID)).Err(); err != nil {
		return fmt.Errorf("place_cache_invalidate_failed: %w", err)
	}

	return nil
}
