package utils

import (
	"math"
	"testing"
)

func TestHaversineZero(t *testing.T) {
	if d := HaversineDistance(0, 0, 0, 0); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineOneDegreeAtEquator(t *testing.T) {
	// One degree of longitude on the equator is 1/360 of the
	// circumference.
	want := 2 * math.Pi * EarthRadiusMeters / 360
	got := HaversineDistance(0, 0, 0, 1)
	if math.Abs(got-want) > 1 {
		t.Fatalf("expected ~%.1f m, got %.1f m", want, got)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineDistance(40.7128, -74.0060, 34.0522, -118.2437)
	b := HaversineDistance(34.0522, -118.2437, 40.7128, -74.0060)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestIsWithinRadiusBoundary(t *testing.T) {
	d := HaversineDistance(0, 0, 0, 0.05)
	if !IsWithinRadius(0, 0, 0, 0.05, d+1) {
		t.Fatal("point just inside radius reported outside")
	}
	if IsWithinRadius(0, 0, 0, 0.05, d-1) {
		t.Fatal("point just outside radius reported inside")
	}
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	const radius = 5000.0
	bbox := GetBoundingBox(48.8566, 2.3522, radius)

	// Points at the four cardinal extremes of the circle must fall inside
	// the box.
	for _, p := range []Point{
		{Lat: 48.8566 + radius/EarthRadiusMeters*180/math.Pi, Lng: 2.3522},
		{Lat: 48.8566 - radius/EarthRadiusMeters*180/math.Pi, Lng: 2.3522},
	} {
		if !IsPointInBoundingBox(p, bbox) {
			t.Fatalf("cardinal point %+v outside bounding box %+v", p, bbox)
		}
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	bbox := GetBoundingBox(89.9999, 0, 5000)
	if bbox.SouthWest.Lng != -180 || bbox.NorthEast.Lng != 180 {
		t.Fatalf("polar box should span all longitudes, got %+v", bbox)
	}
}
