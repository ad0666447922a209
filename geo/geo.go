// Package geo contains the distance math used by the nearby-request search.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used for all spherical math.
const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is a real coordinate pair.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Box is a latitude/longitude bounding box, southwest corner first.
type Box struct {
	SwLat float64
	SwLng float64
	NeLat float64
	NeLng float64
}

func (b Box) Contains(p Point) bool {
	return p.Lat >= b.SwLat && p.Lat <= b.NeLat && p.Lng >= b.SwLng && p.Lng <= b.NeLng
}

// KmToRadians converts a surface distance to the angular radius used by
// spherical-cap style queries.
func KmToRadians(km float64) float64 {
	return km / EarthRadiusKm
}

func RadiansToKm(rad float64) float64 {
	return rad * EarthRadiusKm
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox returns a box guaranteed to contain the circle of radiusKm
// around center. The box is an over-approximation: candidates inside it still
// need the exact Haversine re-check. Near the poles the latitude span is
// clamped and the longitude span widens to the full range, and the same
// happens when the box would cross the antimeridian, so the pre-filter can
// only over-select, never miss.
func BoundingBox(center Point, radiusKm float64) Box {
	// Pad by 1%: at non-zero latitudes the widest east-west extent of the
	// circle sits slightly off the center parallel, so an unpadded box can
	// shave candidates right at the rim.
	latDelta := radiusKm * 1.01 / EarthRadiusKm * 180 / math.Pi

	swLat := center.Lat - latDelta
	neLat := center.Lat + latDelta

	fullLng := false
	if swLat <= -90 {
		swLat = -90
		fullLng = true
	}
	if neLat >= 90 {
		neLat = 90
		fullLng = true
	}

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	if cosLat < 1e-9 {
		fullLng = true
	}

	var swLng, neLng float64
	if !fullLng {
		lngDelta := latDelta / cosLat
		swLng = center.Lng - lngDelta
		neLng = center.Lng + lngDelta
		if swLng < -180 || neLng > 180 || lngDelta >= 180 {
			fullLng = true
		}
	}
	if fullLng {
		swLng, neLng = -180, 180
	}

	return Box{SwLat: swLat, SwLng: swLng, NeLat: neLat, NeLng: neLng}
}

// RoundKm rounds a distance to the two decimals exposed by the API.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// FormatDistance renders a distance for humans: meters below one kilometer,
// otherwise kilometers with one decimal.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}
