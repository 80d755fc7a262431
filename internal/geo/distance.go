// Package geo holds the great-circle math behind the distance-sorted feed.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

const milesPerKm = 0.621371

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and in range.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 &&
		p.Lng >= -180 && p.Lng <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// FormatDistance renders a distance for display, in miles.
func FormatDistance(km float64) string {
	miles := km * milesPerKm
	switch {
	case miles < 0.1:
		return "< 0.1 mi away"
	case miles < 10:
		return fmt.Sprintf("%.1f mi away", miles)
	default:
		return fmt.Sprintf("%d mi away", int(math.Round(miles)))
	}
}

// ParsePoint parses query-string coordinates. Both empty means "no position"
// and returns nil without error.
func ParsePoint(lat, lng string) (*Point, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("both lat and lng are required")
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}

	p := Point{Lat: la, Lng: ln}
	if !p.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %s", p)
	}
	return &p, nil
}
