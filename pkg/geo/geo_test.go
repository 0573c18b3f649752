// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverbeen/api/pkg/geo"
)

/*
TestIsFullCode distinguishes full plus codes from short and invalid ones.
*/
func TestIsFullCode(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		isFull bool
	}{
		{"full_code_zurich", "8FVC9G8F+6X", true},
		{"full_code_tokyo", "8Q7XPQ2J+2V", true},
		{"short_code", "9G8F+6X", false},
		{"garbage", "not-a-code", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isFull, geo.IsFullCode(tt.code))
		})
	}
}

/*
TestDecode resolves a known code to coordinates near its documented center.
*/
func TestDecode(t *testing.T) {
	// 8FVC9G8F+6X covers a spot in Zurich (~47.3654, 8.5248)
	point, err := geo.Decode("8FVC9G8F+6X")
	require.NoError(t, err)

	assert.InDelta(t, 47.3654, point.Lat, 0.001)
	assert.InDelta(t, 8.5248, point.Lng, 0.001)

	_, err = geo.Decode("9G8F+6X")
	assert.Error(t, err)
}

/*
TestDistanceKm checks the haversine distance against known city pairs.
*/
func TestDistanceKm(t *testing.T) {
	zurich := geo.Point{Lat: 47.3769, Lng: 8.5417}
	geneva := geo.Point{Lat: 46.2044, Lng: 6.1432}

	// Zurich–Geneva is roughly 224 km as the crow flies
	distance := geo.DistanceKm(zurich, geneva)
	assert.InDelta(t, 224.0, distance, 5.0)

	// Distance is symmetric and zero to itself
	assert.InDelta(t, distance, geo.DistanceKm(geneva, zurich), 1e-9)
	assert.Zero(t, geo.DistanceKm(zurich, zurich))
}
