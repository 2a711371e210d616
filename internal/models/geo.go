package models

// GeoPoint is a named location with WGS84 coordinates.
// Longitude first to match the GeoJSON convention used by clients.
type GeoPoint struct {
	Label string  `json:"label"`
	Lng   float64 `json:"lng" gorm:"not null"`
	Lat   float64 `json:"lat" gorm:"not null"`
}

// Valid reports whether the point has in-range coordinates.
// NaN and Inf fail the range comparisons, so no explicit check is needed.
func (p GeoPoint) Valid() bool {
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90
}
