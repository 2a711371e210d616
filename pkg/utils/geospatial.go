package utils

import (
	"math"
)

// EarthRadiusMeters is the equatorial Earth radius used for all
// great-circle math, matching the constant MongoDB uses for $centerSphere.
const EarthRadiusMeters = 6378137.0

// HaversineDistance calculates the distance between two points on Earth
// using the Haversine formula. Returns distance in meters.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinRadius checks if a point lies within the spherical cap of the
// given radius (meters) around a center point.
func IsWithinRadius(centerLat, centerLng, pointLat, pointLng, radiusMeters float64) bool {
	return HaversineDistance(centerLat, centerLng, pointLat, pointLng) <= radiusMeters
}

// Point represents a geographical point
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox represents a rectangular area
type BoundingBox struct {
	NorthEast Point `json:"northEast"`
	SouthWest Point `json:"southWest"`
}

// GetBoundingBox creates a bounding box around a center point. The box is a
// superset of the radius circle, so it only serves as an index-friendly
// prefilter; callers must still apply the exact Haversine check.
func GetBoundingBox(centerLat, centerLng, radiusMeters float64) BoundingBox {
	// Calculate the angular distance
	angularDistance := radiusMeters / EarthRadiusMeters

	// Calculate the latitude bounds
	latMin := centerLat - (angularDistance * 180 / math.Pi)
	latMax := centerLat + (angularDistance * 180 / math.Pi)

	// Longitude degrees shrink with latitude; guard the poles where the
	// cosine goes to zero and the box must span all longitudes.
	cosLat := math.Cos(centerLat * math.Pi / 180)
	var lngMin, lngMax float64
	if cosLat < 1e-9 {
		lngMin, lngMax = -180, 180
	} else {
		lngMin = centerLng - (angularDistance * 180 / math.Pi / cosLat)
		lngMax = centerLng + (angularDistance * 180 / math.Pi / cosLat)
	}

	return BoundingBox{
		NorthEast: Point{Lat: latMax, Lng: lngMax},
		SouthWest: Point{Lat: latMin, Lng: lngMin},
	}
}

// IsPointInBoundingBox checks if a point is within a bounding box
func IsPointInBoundingBox(point Point, bbox BoundingBox) bool {
	return point.Lat >= bbox.SouthWest.Lat &&
		point.Lat <= bbox.NorthEast.Lat &&
		point.Lng >= bbox.SouthWest.Lng &&
		point.Lng <= bbox.NorthEast.Lng
}
