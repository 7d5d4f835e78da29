package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	// Bogota to Medellin, roughly 240km apart.
	d := DistanceKm(4.7110, -74.0721, 6.2442, -75.5812)
	assert.InDelta(t, 240, d, 15)

	assert.Zero(t, DistanceKm(4.7110, -74.0721, 4.7110, -74.0721))
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lng := 4.7110, -74.0721
	minLat, maxLat, minLng, maxLng := BoundingBox(lat, lng, 50)

	assert.Less(t, minLat, lat)
	assert.Greater(t, maxLat, lat)
	assert.Less(t, minLng, lng)
	assert.Greater(t, maxLng, lng)

	// A point 40km due north must fall inside the box.
	north := lat + 40.0/111.0
	assert.LessOrEqual(t, north, maxLat)
}
