package domain

import "fmt"

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultCenter is the country-scale view used before anything is focused and
// for items without coordinates.
var DefaultCenter = GeoPoint{Lat: 20.59, Lon: 78.96}

// NewGeoPoint builds a point from optional coordinates. A pair where either
// side is missing, or both are zero, yields nil.
func NewGeoPoint(lat, lon *float64) *GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	if *lat == 0 && *lon == 0 {
		return nil
	}
	return &GeoPoint{Lat: *lat, Lon: *lon}
}

// Valid reports whether the point lies within WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
