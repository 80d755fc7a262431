package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{name: "one degree of longitude at the equator", a: Point{0, 0}, b: Point{0, 1}, want: 111.19, tol: 0.01},
		{name: "one degree of latitude", a: Point{0, 0}, b: Point{1, 0}, want: 111.19, tol: 0.01},
		{name: "same point", a: Point{40, -74}, b: Point{40, -74}, want: 0, tol: 0},
		{name: "new york to london", a: Point{40.7128, -74.0060}, b: Point{51.5074, -0.1278}, want: 5570, tol: 5},
		{name: "antipodes", a: Point{0, 0}, b: Point{0, 180}, want: math.Pi * EarthRadiusKm, tol: 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Haversine(%v, %v) = %.4f, want %.4f ± %.4f", tt.a, tt.b, got, tt.want, tt.tol)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	points := []Point{{0, 0}, {40, -74}, {-33.87, 151.21}, {64.15, -21.94}, {89.9, 10}}
	for _, a := range points {
		for _, b := range points {
			ab, ba := Haversine(a, b), Haversine(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("Haversine not symmetric for %v, %v: %f vs %f", a, b, ab, ba)
			}
		}
		if d := Haversine(a, a); d != 0 {
			t.Errorf("Haversine(%v, %v) = %f, want 0", a, a, d)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{km: 0, want: "< 0.1 mi away"},
		{km: 0.1, want: "< 0.1 mi away"},
		{km: 1, want: "0.6 mi away"},
		{km: 15, want: "9.3 mi away"},
		{km: 100, want: "62 mi away"},
	}

	for _, tt := range tests {
		if got := FormatDistance(tt.km); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.km, got, tt.want)
		}
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name      string
		lat, lng  string
		wantNil   bool
		wantError bool
	}{
		{name: "both empty", lat: "", lng: "", wantNil: true},
		{name: "valid", lat: "40.5", lng: "-74.25"},
		{name: "missing lng", lat: "40", lng: "", wantError: true},
		{name: "not a number", lat: "north", lng: "1", wantError: true},
		{name: "out of range", lat: "91", lng: "0", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.lat, tt.lng)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParsePoint(%q, %q) expected error", tt.lat, tt.lng)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePoint(%q, %q) unexpected error: %v", tt.lat, tt.lng, err)
			}
			if tt.wantNil != (p == nil) {
				t.Errorf("ParsePoint(%q, %q) = %v, wantNil %v", tt.lat, tt.lng, p, tt.wantNil)
			}
		})
	}
}
