package geo

import (
	"math"
	"testing"
)

func squareArea(t *testing.T) *Area {
	t.Helper()
	a, err := NewArea(
		[]float64{10, 10, 20, 20},
		[]float64{10, 20, 20, 10},
	)
	if err != nil {
		t.Fatalf("failed to build area: %v", err)
	}
	return a
}

func TestNewArea_TooFewPoints(t *testing.T) {
	if _, err := NewArea([]float64{10, 20}, []float64{10, 20}); err != ErrTooFewPoints {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestNewArea_MismatchedLengths(t *testing.T) {
	if _, err := NewArea([]float64{10, 20, 30}, []float64{10, 20}); err != ErrTooFewPoints {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestNewArea_SelfIntersectingRing(t *testing.T) {
	// bowtie: the ring crosses itself, so polygon construction must fail
	_, err := NewArea(
		[]float64{0, 1, 0, 1},
		[]float64{0, 1, 1, 0},
	)
	if err == nil {
		t.Fatal("expected error for self-intersecting ring")
	}
}

func TestArea_Contains(t *testing.T) {
	a := squareArea(t)

	if !a.Contains(15, 15) {
		t.Error("interior point should be inside")
	}
	if a.Contains(25, 25) {
		t.Error("exterior point should be outside")
	}
	// boundary counts as inside
	if !a.Contains(10, 15) {
		t.Error("boundary point should be inside")
	}
}

func TestArea_Centroid(t *testing.T) {
	a := squareArea(t)

	lat, lon := a.Centroid()
	if math.Abs(lat-15) > 0.01 || math.Abs(lon-15) > 0.01 {
		t.Errorf("expected centroid near (15,15), got (%f,%f)", lat, lon)
	}
}

func TestProject3857_EquatorOrigin(t *testing.T) {
	x, y := Project3857(0, 0)
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("expected origin projection near (0,0), got (%f,%f)", x, y)
	}

	x, _ = Project3857(0, 90)
	if x <= 0 {
		t.Errorf("eastern longitude should project to positive x, got %f", x)
	}
}
