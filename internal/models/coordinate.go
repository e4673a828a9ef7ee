package models

import (
	"fmt"
	"math"
	"strconv"
)

// Coordinate validation bounds.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

const earthRadiusMiles = 3958.8

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) Validate() error {
	if c.Latitude < MinLatitude || c.Latitude > MaxLatitude {
		return fmt.Errorf("latitude must be between %f and %f, got %f", MinLatitude, MaxLatitude, c.Latitude)
	}
	if c.Longitude < MinLongitude || c.Longitude > MaxLongitude {
		return fmt.Errorf("longitude must be between %f and %f, got %f", MinLongitude, MaxLongitude, c.Longitude)
	}
	return nil
}

// LonLat formats the coordinate as "lon,lat", the order ArcGIS, ORS and
// OSRM expect.
func (c Coordinate) LonLat() string {
	return fmt.Sprintf("%s,%s", formatDegrees(c.Longitude), formatDegrees(c.Latitude))
}

// LatLng formats the coordinate as "lat,lng" for Google APIs.
func (c Coordinate) LatLng() string {
	return fmt.Sprintf("%s,%s", formatDegrees(c.Latitude), formatDegrees(c.Longitude))
}

// HaversineMiles returns the great-circle distance between two points.
func HaversineMiles(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
