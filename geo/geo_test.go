package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineSymmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 40.0, Lng: -74.0}, {Lat: 40.05, Lng: -74.0}},
		{{Lat: 37.06622, Lng: 37.38332}, {Lat: 36.2023, Lng: 36.1613}},
		{{Lat: -33.8688, Lng: 151.2093}, {Lat: 51.5074, Lng: -0.1278}},
		{{Lat: 0, Lng: 179.9}, {Lat: 0, Lng: -179.9}},
	}

	for _, pair := range pairs {
		assert.InDelta(t, Haversine(pair[0], pair[1]), Haversine(pair[1], pair[0]), 1e-9)
	}
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 38.4237, Lng: 27.1428}
	assert.Equal(t, 0.0, Haversine(p, p))
}

func TestHaversineKnownDistance(t *testing.T) {
	// The scenario distance from the matching engine: ~5.56 km due north.
	a := Point{Lat: 40.0, Lng: -74.0}
	b := Point{Lat: 40.05, Lng: -74.0}

	d := Haversine(a, b)
	assert.InDelta(t, 5.56, d, 0.01)
}

func TestHaversineAntimeridian(t *testing.T) {
	// Two points straddling the date line are ~22 km apart, not half the globe.
	a := Point{Lat: 0, Lng: 179.9}
	b := Point{Lat: 0, Lng: -179.9}

	d := Haversine(a, b)
	assert.Less(t, d, 25.0)
	assert.Greater(t, d, 20.0)
}

func TestKmRadiansRoundTrip(t *testing.T) {
	assert.InDelta(t, 10.0, RadiansToKm(KmToRadians(10.0)), 1e-9)
	assert.InDelta(t, 10.0/EarthRadiusKm, KmToRadians(10.0), 1e-12)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	center := Point{Lat: 40.0, Lng: -74.0}
	box := BoundingBox(center, 10)

	// Points at the cardinal extremes of the 10 km circle must be inside.
	north := Point{Lat: 40.0899, Lng: -74.0}
	south := Point{Lat: 39.9101, Lng: -74.0}
	east := Point{Lat: 40.0, Lng: -73.8827}
	west := Point{Lat: 40.0, Lng: -74.1173}

	for _, p := range []Point{north, south, east, west, center} {
		assert.True(t, box.Contains(p), "expected %v inside %v", p, box)
	}
}

func TestBoundingBoxOverApproximates(t *testing.T) {
	center := Point{Lat: 40.0, Lng: -74.0}
	box := BoundingBox(center, 10)

	// The box corner is inside the box but outside the true 10 km circle.
	corner := Point{Lat: box.NeLat, Lng: box.NeLng}
	assert.True(t, box.Contains(corner))
	assert.Greater(t, Haversine(center, corner), 10.0)
}

func TestBoundingBoxPoleClamp(t *testing.T) {
	box := BoundingBox(Point{Lat: 89.9, Lng: 0}, 50)

	assert.Equal(t, 90.0, box.NeLat)
	assert.Equal(t, -180.0, box.SwLng)
	assert.Equal(t, 180.0, box.NeLng)
}

func TestBoundingBoxAntimeridianWidens(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lng: 179.95}, 20)

	// Rather than wrapping, the box widens so no candidate can be missed.
	assert.Equal(t, -180.0, box.SwLng)
	assert.Equal(t, 180.0, box.NeLng)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 0, Lng: 0}.Valid())
	assert.True(t, Point{Lat: -90, Lng: 180}.Valid())
	assert.False(t, Point{Lat: 90.01, Lng: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lng: -180.5}.Valid())
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", FormatDistance(0.85))
	assert.Equal(t, "999 m", FormatDistance(0.9994))
	assert.Equal(t, "5.6 km", FormatDistance(5.56))
	assert.Equal(t, "1.0 km", FormatDistance(1.0))
	assert.Equal(t, "12.3 km", FormatDistance(12.34))
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 5.56, RoundKm(5.55974))
	assert.Equal(t, 0.0, RoundKm(0.0))
	assert.Equal(t, 10.0, RoundKm(9.999))
}
