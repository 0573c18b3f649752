// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

// Package geo provides plus-code handling and great-circle distance math
// for place location queries.
//
// # Overview
//
// Places are identified by full Open Location Codes ("plus codes"). This
// package validates codes on submission and resolves them to coordinates
// for distance-ordered listings.
package geo

import (
	"fmt"
	"math"

	olc "github.com/google/open-location-code/go"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// IsFullCode reports whether the value is a valid FULL plus code.
//
// Short codes (relative to a reference location) are rejected: a stored
// place must be resolvable to coordinates without extra context.
func IsFullCode(code string) bool {
	return olc.CheckFull(code) == nil
}

// Decode resolves a full plus code to the center point of its cell.
func Decode(code string) (Point, error) {
	area, err := olc.Decode(code)
	if err != nil {
		return Point{}, fmt.Errorf("geo: failed to decode plus code %q: %w", code, err)
	}

	lat, lng := area.Center()
	return Point{Lat: lat, Lng: lng}, nil
}

// DistanceKm returns the great-circle distance between two points in
// kilometers, using the haversine formula.
func DistanceKm(a, b Point) float64 {
	latA := toRadians(a.Lat)
	latB := toRadians(b.Lat)
	deltaLat := toRadians(b.Lat - a.Lat)
	deltaLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(deltaLat / 2)
	sinLng := math.Sin(deltaLng / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// toRadians converts degrees to radians.
func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
