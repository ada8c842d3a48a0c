package nblast

import "testing"

func TestCentroid(t *testing.T) {
	points := []Point{{0, 0, 0}, {2, 0, 0}, {1, 3, 0}, {1, 1, 6}}
	got := Centroid(points)
	want := Point{1, 1, 1.5}
	for i := 0; i < 3; i++ {
		if !almostEqual(got[i], want[i], 1e-9) {
			t.Fatalf("Centroid() = %v, want %v", got, want)
		}
	}
}

func TestCenterPoints(t *testing.T) {
	points := []Point{{1, 2, 3}, {3, 2, 1}}
	centered := CenterPoints(points)

	centroidOfCentered := Centroid(centered)
	for i := 0; i < 3; i++ {
		if !almostEqual(centroidOfCentered[i], 0, 1e-9) {
			t.Fatalf("centroid of centered points = %v, want origin", centroidOfCentered)
		}
	}
	// Original slice must not be mutated.
	if points[0] != (Point{1, 2, 3}) {
		t.Fatalf("CenterPoints mutated its input: %v", points[0])
	}
}

func TestSquaredDistance(t *testing.T) {
	a := Point{0, 0, 0}
	b := Point{3, 4, 0}
	if got := a.SquaredDistance(b); !almostEqual(got, 25, 1e-9) {
		t.Fatalf("SquaredDistance = %v, want 25", got)
	}
}

func TestTangentDotAndAbsDot(t *testing.T) {
	a := Tangent{1, 0, 0}
	b := Tangent{-1, 0, 0}
	if got := a.Dot(b); !almostEqual(got, -1, 1e-9) {
		t.Fatalf("Dot = %v, want -1", got)
	}
	if got := a.AbsDot(b); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("AbsDot = %v, want 1", got)
	}
}

func TestTangentNorm(t *testing.T) {
	tg := Tangent{3, 4, 0}
	if got := tg.Norm(); !almostEqual(got, 5, 1e-9) {
		t.Fatalf("Norm = %v, want 5", got)
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	if _, ok := normalizeVector([3]float64{0, 0, 0}); ok {
		t.Fatal("normalizeVector(0,0,0) should fail")
	}
}

func TestNormalizeVectorUnit(t *testing.T) {
	tg, ok := normalizeVector([3]float64{0, 2, 0})
	if !ok {
		t.Fatal("normalizeVector should succeed")
	}
	if !almostEqual(tg.Norm(), 1, 1e-9) {
		t.Fatalf("normalized vector not unit length: %v", tg)
	}
}
