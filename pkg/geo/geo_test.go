package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineIdenticalPoints(t *testing.T) {
	p := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	assert.Zero(t, Haversine(p, p))
}

func TestHaversineSymmetry(t *testing.T) {
	a := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	b := Coordinate{Latitude: 12.9750, Longitude: 77.6000}
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

func TestHaversineOneMilliDegreeLatitude(t *testing.T) {
	// 0.001 degrees of latitude is about 111 meters anywhere on the sphere.
	a := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	b := Coordinate{Latitude: 12.9726, Longitude: 77.5946}
	d := Haversine(a, b)
	assert.InDelta(t, 111.0, d, 111.0*0.01)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Bangalore to Chennai, roughly 290 km.
	blr := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	maa := Coordinate{Latitude: 13.0827, Longitude: 80.2707}
	d := Haversine(blr, maa)
	assert.Greater(t, d, 280000.0)
	assert.Less(t, d, 300000.0)
}
