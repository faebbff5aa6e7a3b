package geo

import (
	"math"
	"testing"
)

func TestDistance_ZeroForSamePoint(t *testing.T) {
	d := Distance(36.0, -75.0, 36.0, -75.0)
	if d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// Norfolk to Rota is roughly 6393 km
	d := Distance(36.85, -76.29, 36.62, -6.35)
	if d < 6200 || d > 6600 {
		t.Errorf("unexpected distance: %f km", d)
	}
}

func TestBearing_Range(t *testing.T) {
	points := [][4]float64{
		{0, 0, 10, 10},
		{50, -30, -20, 60},
		{36, -75, 36, -76},
		{10, 0, -10, 0},
	}
	for _, p := range points {
		b := Bearing(p[0], p[1], p[2], p[3])
		if b < 0 || b >= 360 {
			t.Errorf("bearing out of range for %v: %f", p, b)
		}
	}
}

func TestBearing_Cardinal(t *testing.T) {
	b := Bearing(0, 0, 10, 0)
	if math.Abs(b-0) > 0.5 {
		t.Errorf("expected north bearing, got %f", b)
	}
	b = Bearing(0, 0, 0, 10)
	if math.Abs(b-90) > 0.5 {
		t.Errorf("expected east bearing, got %f", b)
	}
}

func TestDestination_RoundTrip(t *testing.T) {
	lat, lon := 36.0, -75.0
	destLat, destLon := Destination(lat, lon, 100.0, 45.0)

	d := Distance(lat, lon, destLat, destLon)
	if math.Abs(d-100.0) > 0.1 {
		t.Errorf("expected 100 km to destination, got %f", d)
	}

	b := Bearing(lat, lon, destLat, destLon)
	if math.Abs(b-45.0) > 0.5 {
		t.Errorf("expected bearing 45, got %f", b)
	}
}

func TestNextPosition_NoOvershoot(t *testing.T) {
	// 30 seconds at 600 knots cannot cover 100 km; one hour can.
	lat, lon := 36.0, -75.0
	destLat, destLon := Destination(lat, lon, 100.0, 90.0)

	midLat, midLon := NextPosition(lat, lon, destLat, destLon, 600, 30)
	if Distance(lat, lon, midLat, midLon) >= 100.0 {
		t.Error("short tick should not reach the destination")
	}

	gotLat, gotLon := NextPosition(lat, lon, destLat, destLon, 600, 3600)
	if gotLat != destLat || gotLon != destLon {
		t.Errorf("long tick should clamp to destination, got %f,%f", gotLat, gotLon)
	}
}

func TestNextPosition_ZeroSpeedHolds(t *testing.T) {
	lat, lon := NextPosition(10, 20, 30, 40, 0, 60)
	if lat != 10 || lon != 20 {
		t.Errorf("zero speed should hold position, got %f,%f", lat, lon)
	}
}

func TestNmToKm(t *testing.T) {
	if got := NmToKm(1); math.Abs(got-1.852) > 1e-9 {
		t.Errorf("expected 1.852, got %f", got)
	}
}
